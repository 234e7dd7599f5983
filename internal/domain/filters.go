package domain

// FilterItem is one facet the marketplace search can be narrowed by. A nil
// Value means the facet is inactive.
type FilterItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"` // checkbox, select, text, number
	Value any    `json:"value"`
}

type FilterGroup struct {
	Key   string       `json:"key"`
	Label string       `json:"label"`
	Items []FilterItem `json:"items"`
}

func item(key, label, typ string) FilterItem {
	return FilterItem{Key: key, Label: label, Type: typ}
}

// DefaultFilterGroups returns a fresh copy of the facet catalogue.
func DefaultFilterGroups() []FilterGroup {
	return []FilterGroup{
		{
			Key:   "sociodemographics",
			Label: "Sociodemographics",
			Items: []FilterItem{
				item("age", "Age", "number"),
				item("gender", "Gender", "select"),
				item("ethnicity", "Ethnicity", "select"),
			},
		},
		{
			Key:   "comorbidities",
			Label: "Comorbidities",
			Items: []FilterItem{
				item("previous_myocardial_infarction", "Previous myocardial infarction", "checkbox"),
				item("stroke", "Stroke", "checkbox"),
				item("chronic_obstructive_pulmonary_disease", "Chronic obstructive pulmonary disease", "checkbox"),
				item("atrial_fibrillation", "Atrial fibrillation", "checkbox"),
				item("peripheral_artery_disease", "Peripheral artery disease", "checkbox"),
				item("hypertension", "Hypertension", "checkbox"),
				item("diabetes", "Diabetes", "checkbox"),
				item("hypercholesterolemia", "Hypercholesterolemia", "checkbox"),
				item("chronic_kidney_disease", "Chronic kidney disease", "checkbox"),
			},
		},
		{
			Key:   "physical_measurements",
			Label: "Physical measurements",
			Items: []FilterItem{
				item("height", "Height", "number"),
				item("waist_hip_ratio", "Waist-hip ratio", "number"),
				item("waist_height_ratio", "Waist-height ratio", "number"),
				item("sbp", "Systolic blood pressure", "number"),
			},
		},
		{
			Key:   "lifestyle_habits",
			Label: "Lifestyle habits",
			Items: []FilterItem{
				item("smoking_history", "Smoking history", "checkbox"),
			},
		},
	}
}

// ActiveFilters collects the values of every active facet by key.
func ActiveFilters(groups []FilterGroup) map[string]any {
	active := map[string]any{}
	for _, group := range groups {
		for _, it := range group.Items {
			if it.Value != nil {
				active[it.Key] = it.Value
			}
		}
	}
	return active
}

// ResetFilters deactivates every facet in place.
func ResetFilters(groups []FilterGroup) {
	for g := range groups {
		for i := range groups[g].Items {
			groups[g].Items[i].Value = nil
		}
	}
}
