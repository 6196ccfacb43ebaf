// RAScript
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of RAScript.
//
// RAScript is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// RAScript is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with RAScript.  If not, see <http://www.gnu.org/licenses/>.

// Package runtimever names the runtime versions that introduced each
// condition feature, so compilation can target a minimum runtime.
package runtimever

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

var (
	// V0_30 is the baseline: plain comparisons, ResetIf, PauseIf, AddSource,
	// SubSource and AddHits.
	V0_30 = semver.MustParse("0.30.0")
	// V0_76 added AndNext and AddAddress.
	V0_76 = semver.MustParse("0.76.0")
	// V0_77 added Measured and BitCount.
	V0_77 = semver.MustParse("0.77.0")
	// V0_78 added OrNext, MeasuredIf and the Trigger flag.
	V0_78 = semver.MustParse("0.78.0")
	// V0_79 added ResetNextIf, SubHits and MeasuredPercent.
	V0_79 = semver.MustParse("0.79.0")
	// V1_0 added big-endian and float sizes.
	V1_0 = semver.MustParse("1.0.0")
	// V1_3 added Remember/Recall and the modulus operator.
	V1_3 = semver.MustParse("1.3.0")

	// Latest is used when no minimum version is configured.
	Latest = V1_3
)

// Feature is a runtime capability gated on a minimum version.
type Feature string

const (
	FeatureAndNext     Feature = "AndNext"
	FeatureAddAddress  Feature = "AddAddress"
	FeatureMeasured    Feature = "Measured"
	FeatureBitCount    Feature = "BitCount"
	FeatureOrNext      Feature = "OrNext"
	FeatureMeasuredIf  Feature = "MeasuredIf"
	FeatureTrigger     Feature = "Trigger"
	FeatureResetNextIf Feature = "ResetNextIf"
	FeatureSubHits     Feature = "SubHits"
	FeaturePercent     Feature = "MeasuredPercent"
	FeatureBigEndian   Feature = "BigEndian"
	FeatureFloat       Feature = "Float"
	FeatureRemember    Feature = "Remember"
	FeatureModulus     Feature = "Modulus"
)

var featureVersions = map[Feature]*semver.Version{
	FeatureAndNext:     V0_76,
	FeatureAddAddress:  V0_76,
	FeatureMeasured:    V0_77,
	FeatureBitCount:    V0_77,
	FeatureOrNext:      V0_78,
	FeatureMeasuredIf:  V0_78,
	FeatureTrigger:     V0_78,
	FeatureResetNextIf: V0_79,
	FeatureSubHits:     V0_79,
	FeaturePercent:     V0_79,
	FeatureBigEndian:   V1_0,
	FeatureFloat:       V1_0,
	FeatureRemember:    V1_3,
	FeatureModulus:     V1_3,
}

// Parse parses a version string such as "0.79" or "1.3.0". An empty string
// selects Latest.
func Parse(s string) (*semver.Version, error) {
	if s == "" {
		return Latest, nil
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("invalid runtime version %q: %w", s, err)
	}
	return v, nil
}

// Supports reports whether a runtime of at least version v has the feature.
// A nil version is treated as Latest.
func Supports(v *semver.Version, f Feature) bool {
	if v == nil {
		v = Latest
	}
	required, ok := featureVersions[f]
	if !ok {
		return true
	}
	return !v.LessThan(required)
}

// Required returns the version that introduced the feature.
func Required(f Feature) *semver.Version {
	if v, ok := featureVersions[f]; ok {
		return v
	}
	return V0_30
}
