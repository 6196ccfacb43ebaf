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

package builder

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/ZaparooProject/rascript/pkg/rascript/requirements"
	"github.com/ZaparooProject/rascript/pkg/rascript/runtimever"
)

var typeFeatures = map[requirements.RequirementType]runtimever.Feature{
	requirements.RequirementTypeAndNext:         runtimever.FeatureAndNext,
	requirements.RequirementTypeAddAddress:      runtimever.FeatureAddAddress,
	requirements.RequirementTypeMeasured:        runtimever.FeatureMeasured,
	requirements.RequirementTypeOrNext:          runtimever.FeatureOrNext,
	requirements.RequirementTypeMeasuredIf:      runtimever.FeatureMeasuredIf,
	requirements.RequirementTypeTrigger:         runtimever.FeatureTrigger,
	requirements.RequirementTypeResetNextIf:     runtimever.FeatureResetNextIf,
	requirements.RequirementTypeSubHits:         runtimever.FeatureSubHits,
	requirements.RequirementTypeMeasuredPercent: runtimever.FeaturePercent,
	requirements.RequirementTypeRemember:        runtimever.FeatureRemember,
}

func fieldFeature(f requirements.Field) (runtimever.Feature, bool) {
	switch f.Type {
	case requirements.FieldTypeFloat:
		return runtimever.FeatureFloat, true
	case requirements.FieldTypeRecall:
		return runtimever.FeatureRemember, true
	case requirements.FieldTypeValue:
		return "", false
	}
	feature, ok := sizeFeatures[f.Size]
	return feature, ok
}

// Features lists the runtime features used by the requirements in order
// of first use.
func Features(groups ...[]requirements.Requirement) []runtimever.Feature {
	seen := make(map[runtimever.Feature]bool)
	var out []runtimever.Feature
	add := func(f runtimever.Feature) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}

	for _, group := range groups {
		for _, r := range group {
			if f, ok := typeFeatures[r.Type]; ok {
				add(f)
			}
			if r.Operator == requirements.OperatorModulus {
				add(runtimever.FeatureModulus)
			}
			if f, ok := fieldFeature(r.Left); ok {
				add(f)
			}
			if r.Operator != requirements.OperatorNone {
				if f, ok := fieldFeature(r.Right); ok {
					add(f)
				}
			}
		}
	}
	return out
}

// Validate returns an error naming the first feature used by the trigger
// that the minimum runtime version does not support.
func Validate(t *requirements.Trigger, v *semver.Version) error {
	return validate(Features(t.Groups()...), v)
}

// ValidateValue is Validate for values. Measured is how every value is
// written, so it is not a feature of the value.
func ValidateValue(val *requirements.ValueDef, v *semver.Version) error {
	var features []runtimever.Feature
	for _, f := range Features(val.Groups...) {
		if f != runtimever.FeatureMeasured {
			features = append(features, f)
		}
	}
	return validate(features, v)
}

func validate(features []runtimever.Feature, v *semver.Version) error {
	for _, f := range features {
		if !runtimever.Supports(v, f) {
			return fmt.Errorf("%w: %s requires runtime version %s",
				ErrUnsupportedFeature, f, runtimever.Required(f))
		}
	}
	return nil
}
