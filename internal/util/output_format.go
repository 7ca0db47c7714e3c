package util

import (
	"fmt"
	"sort"
	"strings"
)

// ValidOutputFormats defines the formats of the scan summary printed to stdout
var ValidOutputFormats = map[string]bool{
	"text":     true,
	"json":     true,
	"yaml":     true,
	"markdown": true,
}

// ValidListFormats defines the formats of listing commands such as "rules"
var ValidListFormats = map[string]bool{
	"text": true,
	"json": true,
	"yaml": true,
}

// ValidateOutputFormat checks if the given summary format is valid
func ValidateOutputFormat(format string) error {
	return validate(format, ValidOutputFormats)
}

// ValidateListFormat checks if the given listing format is valid
func ValidateListFormat(format string) error {
	return validate(format, ValidListFormats)
}

// GetValidFormats returns the sorted list of valid summary formats
func GetValidFormats() []string {
	return keys(ValidOutputFormats)
}

// NormalizeFormat normalizes the format string to lowercase
func NormalizeFormat(format string) string {
	return strings.ToLower(format)
}

func validate(format string, valid map[string]bool) error {
	if !valid[NormalizeFormat(format)] {
		return fmt.Errorf("invalid format: %s. Valid formats are: %s", format, strings.Join(keys(valid), ", "))
	}
	return nil
}

func keys(formats map[string]bool) []string {
	result := make([]string, 0, len(formats))
	for format := range formats {
		result = append(result, format)
	}
	sort.Strings(result)
	return result
}
