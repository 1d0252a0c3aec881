package core

// regno.go decodes institutional registration numbers.
//
// Registration numbers are fixed-format identifiers, not catalog-validated:
// the leading character encodes the entry path ('Y' regular, 'L' lateral),
// the next two digits the admission year, and a letter 'A' followed by two
// uppercase letters encodes the department. "Y23AIT042" is a regular student
// admitted 2023 in department "IT"; "L23ACS007" is a lateral-entry student
// who joined the 2022 cohort in "CS" (lateral entries join one year behind
// their own admission year).

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// deptCodeRegex extracts the department code: the two uppercase letters
// following an 'A' anywhere in the registration number.
var deptCodeRegex = regexp.MustCompile(`A([A-Z]{2})`)

// Registration is the identity information decoded from a registration
// number. DepartmentCode is "" when no department pattern was found; callers
// fall back to UnknownDepartment and an empty subject list.
type Registration struct {
	Batch          string
	EntryType      string
	DepartmentCode string
}

// DecodeRegistration derives admission batch, entry type and department code
// from a registration number. An unrecognized leading character yields the
// InvalidBatchSentinel batch value rather than an error; entry type is still
// derived from the first character.
func DecodeRegistration(regNo string) Registration {
	reg := Registration{
		Batch:     InvalidBatchSentinel,
		EntryType: EntryRegular,
	}

	if strings.HasPrefix(regNo, "L") {
		reg.EntryType = EntryLateral
	}

	if len(regNo) >= 3 {
		switch regNo[0] {
		case 'Y':
			reg.Batch = "20" + regNo[1:3]
		case 'L':
			// Lateral entries enter directly into the second year, so they
			// belong to the cohort admitted the year before them.
			if yr, err := strconv.Atoi(regNo[1:3]); err == nil {
				reg.Batch = fmt.Sprintf("20%02d", yr-1)
			}
		}
	}

	if m := deptCodeRegex.FindStringSubmatch(regNo); m != nil {
		reg.DepartmentCode = m[1]
	}

	return reg
}

// DeriveEmail builds the institutional email address for a roll number:
// the upper-cased roll number followed by the institution's domain suffix.
func DeriveEmail(rollNumber, domain string) string {
	return strings.ToUpper(strings.TrimSpace(rollNumber)) + domain
}
