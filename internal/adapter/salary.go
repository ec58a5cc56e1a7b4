package adapter

import (
	"regexp"
	"strconv"
	"strings"
)

var salaryNumberRegex = regexp.MustCompile(`[\d][\d,]*`)

// parseSalaryRange extracts an annual {min, max} pair from loosely
// formatted salary text ("$80,000 - $100,000", "$80k-$100k"). A "k" suffix
// anywhere in the text scales both bounds by 1000. Strings with fewer than
// two numbers ("Competitive", "$90,000+") yield both bounds absent — a
// single figure is never duplicated into a fake range.
func parseSalaryRange(text string) (*int, *int) {
	if text == "" {
		return nil, nil
	}

	lower := strings.ToLower(text)
	numbers := salaryNumberRegex.FindAllString(lower, -1)
	if len(numbers) < 2 {
		return nil, nil
	}

	min, err := strconv.Atoi(strings.ReplaceAll(numbers[0], ",", ""))
	if err != nil {
		return nil, nil
	}
	max, err := strconv.Atoi(strings.ReplaceAll(numbers[1], ",", ""))
	if err != nil {
		return nil, nil
	}

	if strings.Contains(lower, "k") {
		min *= 1000
		max *= 1000
	}

	return &min, &max
}
