package pipeline

// Role is the clinical role assigned to an anonymous speaker label.
type Role string

const (
	RolePatient   Role = "PATIENT"
	RoleClinician Role = "CLINICIAN"
)

// RoleMap maps speaker labels to clinical roles. Built once per
// session; the same label always maps to the same role within a
// session. Labels absent from the map default to PATIENT.
type RoleMap struct {
	roles map[string]Role
	order []string
}

// AssignRoles builds the role map from the merged turn sequence.
// Baseline policy: a single distinct label is the patient (single-party
// dictation); with two or more labels, the first label encountered in
// time order is the patient and every other label is the clinician.
func AssignRoles(turns []Turn) RoleMap {
	m := RoleMap{roles: make(map[string]Role)}
	for _, t := range turns {
		if _, seen := m.roles[t.Speaker]; seen {
			continue
		}
		role := RoleClinician
		if len(m.order) == 0 {
			role = RolePatient
		}
		m.roles[t.Speaker] = role
		m.order = append(m.order, t.Speaker)
	}
	return m
}

// RoleFor returns the role for a label, defaulting to PATIENT for
// labels that were never mapped.
func (m RoleMap) RoleFor(label string) Role {
	if r, ok := m.roles[label]; ok {
		return r
	}
	return RolePatient
}

// Labels returns the distinct speaker labels in first-seen order.
func (m RoleMap) Labels() []string {
	return m.order
}

// DistinctSpeakers returns the number of distinct labels observed.
func (m RoleMap) DistinctSpeakers() int {
	return len(m.order)
}
