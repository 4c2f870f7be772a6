package pets

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	msgRequired  = "This field is required."
	msgBlank     = "This field may not be blank."
	msgNegative  = "Ensure this value is greater than or equal to 0."
	msgNotFinite = "A valid number is required."
)

func msgMaxLen(n int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", n)
}

func msgChoice(v string) string {
	return fmt.Sprintf("%q is not a valid choice.", v)
}

func validateCreate(in CreateInput) error {
	ve := &ValidationError{}

	checkText(ve, "name", in.Name, MaxPetNameLen)

	if in.Age == nil {
		ve.Add("age", msgRequired)
	} else {
		checkAge(ve, *in.Age)
	}

	if in.Weight == nil {
		ve.Add("weight", msgRequired)
	} else {
		checkWeight(ve, *in.Weight)
	}

	if v := strings.TrimSpace(in.Sex); v != "" && !Sex(v).Valid() {
		ve.Add("sex", msgChoice(v))
	}

	if in.Group == nil {
		ve.Add("group", msgRequired)
	} else {
		checkText(ve, "group.scientific_name", in.Group.ScientificName, MaxScientificNameLen)
	}

	if in.Traits == nil {
		ve.Add("traits", msgRequired)
	} else {
		checkTraits(ve, in.Traits)
	}

	return ve.Err()
}

func validatePatch(in PatchInput) error {
	ve := &ValidationError{}

	if in.Name != nil {
		checkText(ve, "name", *in.Name, MaxPetNameLen)
	}
	if in.Age != nil {
		checkAge(ve, *in.Age)
	}
	if in.Weight != nil {
		checkWeight(ve, *in.Weight)
	}
	if in.Sex != nil {
		if v := strings.TrimSpace(*in.Sex); !Sex(v).Valid() {
			ve.Add("sex", msgChoice(v))
		}
	}
	if in.Group != nil {
		checkText(ve, "group.scientific_name", in.Group.ScientificName, MaxScientificNameLen)
	}
	if in.Traits != nil {
		checkTraits(ve, in.Traits)
	}

	return ve.Err()
}

func checkText(ve *ValidationError, field, v string, max int) {
	v = strings.TrimSpace(v)
	if v == "" {
		ve.Add(field, msgBlank)
		return
	}
	if utf8.RuneCountInString(v) > max {
		ve.Add(field, msgMaxLen(max))
	}
}

func checkAge(ve *ValidationError, age int) {
	if age < 0 {
		ve.Add("age", msgNegative)
	}
}

func checkWeight(ve *ValidationError, w float64) {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		ve.Add("weight", msgNotFinite)
		return
	}
	if w < 0 {
		ve.Add("weight", msgNegative)
	}
}

func checkTraits(ve *ValidationError, traits []TraitInput) {
	for i, t := range traits {
		checkText(ve, fmt.Sprintf("traits[%d].name", i), t.Name, MaxTraitNameLen)
	}
}
