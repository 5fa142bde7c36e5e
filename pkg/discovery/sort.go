package discovery

import (
	"sort"

	"github.com/geteduroam/discogen/pkg/models"
)

// CompareNames orders institution names. Names whose first byte, masked with
// 0x5f, falls in A-Z come first and everything else goes to the end. Within
// each group names compare case-insensitively by byte, so a UTF-8 lead byte
// that masks into A-Z still sorts after every ASCII letter.
func CompareNames(a, b string) int {
	la, lb := leadsWithLetter(a), leadsWithLetter(b)
	switch {
	case la && !lb:
		return -1
	case !la && lb:
		return 1
	}
	return compareFold(a, b)
}

func leadsWithLetter(s string) bool {
	if s == "" {
		return false
	}
	c := s[0] & 0x5f
	return c >= 'A' && c <= 'Z'
}

// compareFold compares bytewise with ASCII letters folded to lower case.
func compareFold(a, b string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		ca, cb := lower(a[i]), lower(b[i])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// SortNames sorts names with CompareNames.
func SortNames(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return CompareNames(names[i], names[j]) < 0
	})
}

func sortInstances(instances []models.Instance) {
	sort.SliceStable(instances, func(i, j int) bool {
		return CompareNames(instances[i].Name, instances[j].Name) < 0
	})
}

func sortInstancesV2(instances []models.InstanceV2) {
	sort.SliceStable(instances, func(i, j int) bool {
		return CompareNames(instances[i].Name, instances[j].Name) < 0
	})
}
