// Package schema locates semantic columns in spreadsheet exports whose header
// names drift across export cycles. Each role carries an ordered predicate
// list; the first predicate with a match wins, so resolution is deterministic
// for a given column set.
package schema

import "strings"

// Role identifies the semantic meaning of a column.
type Role int

const (
	RolePeriod Role = iota
	RoleObjective
	RoleGoal
	RoleCriterion
	RoleCompetency
	RoleScore
	RoleCohort
	RoleStudentID
	RoleProgram
	RoleAdmissionPeriod
)

// String returns the role name for logging.
func (r Role) String() string {
	switch r {
	case RolePeriod:
		return "period"
	case RoleObjective:
		return "objective"
	case RoleGoal:
		return "goal"
	case RoleCriterion:
		return "criterion"
	case RoleCompetency:
		return "competency"
	case RoleScore:
		return "score"
	case RoleCohort:
		return "cohort"
	case RoleStudentID:
		return "student_id"
	case RoleProgram:
		return "program"
	case RoleAdmissionPeriod:
		return "admission_period"
	default:
		return "unknown"
	}
}

// predicate reports whether a normalized (trimmed, lower-cased) column name
// fills the role.
type predicate func(name string) bool

func contains(sub string) predicate {
	return func(name string) bool { return strings.Contains(name, sub) }
}

func prefix(p string) predicate {
	return func(name string) bool { return strings.HasPrefix(name, p) }
}

func exact(s string) predicate {
	return func(name string) bool { return name == s }
}

// rolePredicates is the ordered predicate table per role. Order matters: more
// specific header shapes come first so that, for example, "código y nombre del
// criterio" beats a bare "criterio" column.
var rolePredicates = map[Role][]predicate{
	RolePeriod: {
		contains("semestre o ciclo"),
		prefix("semestre"),
		prefix("periodo de aplicación"),
		prefix("periodo"),
	},
	RoleObjective: {
		contains("objetivo de aprendizaje"),
		contains("objetivos de aprendizaje"),
	},
	RoleGoal: {
		contains("meta de aprendizaje"),
		contains("metas de aprendizaje"),
	},
	RoleCriterion: {
		contains("código y nombre del criterio"),
		contains("codigo y nombre del criterio"),
		contains("nombre del criterio"),
		contains("criterio"),
	},
	RoleCompetency: {
		contains("competencia"),
	},
	RoleScore: {
		contains("puntaje criterio"),
		contains("puntaje"),
	},
	RoleCohort: {
		exact("periodo"),
		contains("cohorte"),
		prefix("periodo"),
	},
	RoleStudentID: {
		contains("código del estudiante"),
		contains("codigo del estudiante"),
		exact("codigo"),
		exact("código"),
	},
	RoleProgram: {
		exact("programa"),
		contains("programa"),
	},
	RoleAdmissionPeriod: {
		contains("fecha inicio"),
		contains("fecha de inicio"),
		contains("periodo de ingreso"),
		prefix("periodo"),
	},
}

// Normalize trims and lower-cases a column name the way both the resolver and
// the cleaner see it.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Resolve returns the first column filling the role, or ("", false). Ties are
// broken by predicate order first, then by column order.
func Resolve(columns []string, role Role) (string, bool) {
	preds, ok := rolePredicates[role]
	if !ok {
		return "", false
	}
	for _, pred := range preds {
		for _, col := range columns {
			if pred(Normalize(col)) {
				return col, true
			}
		}
	}
	return "", false
}

// ResolveAll resolves every requested role, reporting false when any role has
// no match. Resolved names are returned keyed by role.
func ResolveAll(columns []string, roles ...Role) (map[Role]string, bool) {
	out := make(map[Role]string, len(roles))
	complete := true
	for _, role := range roles {
		name, ok := Resolve(columns, role)
		if !ok {
			complete = false
			continue
		}
		out[role] = name
	}
	return out, complete
}
