// internal/wizard/options.go
package wizard

// Select options for the enumerated form fields, in display order.

func GenderOptions() []string {
	return []string{"MALE", "FEMALE"}
}

func EthnicityOptions() []string {
	return []string{"AFRICAN", "COLOURED", "INDIAN", "WHITE", "OTHER"}
}

func YearOfStudyOptions() []string {
	return []string{"1ST", "2ND", "3RD", "4TH", "HONOURS", "MASTERS", "PHD"}
}

func FloorPreferenceOptions() []string {
	return []string{"GROUND", "FIRST", "SECOND", "THIRD"}
}

func FundingSourceOptions() []string {
	return []string{FundingNSFAS, FundingBursary, FundingSelfPaying}
}
