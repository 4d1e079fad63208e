package prayer

import "sort"

// Calculation method ids as the upstream aladhan API knows them.
// There is no id 6 upstream; the gap is intentional.
var methodNames = map[string]string{
	"1":  "University of Islamic Sciences, Karachi",
	"2":  "Islamic Society of North America (ISNA)",
	"3":  "Muslim World League (MWL)",
	"4":  "Umm al-Qura, Makkah",
	"5":  "Egyptian General Authority of Survey",
	"7":  "Institute of Geophysics, University of Tehran",
	"8":  "Gulf Region",
	"9":  "Kuwait",
	"10": "Qatar",
	"11": "Majlis Ugama Islam Singapura, Singapore",
	"12": "Union Organization islamic de France",
	"13": "Diyanet İşleri Başkanlığı, Turkey",
	"14": "Spiritual Administration of Muslims of Russia",
}

// MethodLabel returns the human name for a calculation method id.
// Unknown ids are passed through as an opaque numeric label, not rejected.
func MethodLabel(id string) string {
	if name, ok := methodNames[id]; ok {
		return name
	}
	return "Method " + id
}

// MethodIDs returns the known method ids in numeric order.
func MethodIDs() []string {
	ids := make([]string, 0, len(methodNames))
	for id := range methodNames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) < len(ids[j])
		}
		return ids[i] < ids[j]
	})
	return ids
}
