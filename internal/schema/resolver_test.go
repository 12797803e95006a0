package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		role    Role
		want    string
		ok      bool
	}{
		{
			name:    "period semestre o ciclo",
			columns: []string{"Programa", "Semestre o Ciclo de aplicación"},
			role:    RolePeriod,
			want:    "Semestre o Ciclo de aplicación",
			ok:      true,
		},
		{
			name:    "period generic prefix",
			columns: []string{"Periodo 2024-1"},
			role:    RolePeriod,
			want:    "Periodo 2024-1",
			ok:      true,
		},
		{
			name:    "criterion prefers coded header over bare criterio",
			columns: []string{"Criterio", "Código y nombre del criterio"},
			role:    RoleCriterion,
			want:    "Código y nombre del criterio",
			ok:      true,
		},
		{
			name:    "student id accented",
			columns: []string{"Código del estudiante"},
			role:    RoleStudentID,
			want:    "Código del estudiante",
			ok:      true,
		},
		{
			name:    "student id unaccented",
			columns: []string{"codigo del estudiante"},
			role:    RoleStudentID,
			want:    "codigo del estudiante",
			ok:      true,
		},
		{
			name:    "cohort exact periodo wins over contains",
			columns: []string{"Periodo de aplicación", "Periodo"},
			role:    RoleCohort,
			want:    "Periodo",
			ok:      true,
		},
		{
			name:    "cohort derived column",
			columns: []string{"programa", "cohorte real"},
			role:    RoleCohort,
			want:    "cohorte real",
			ok:      true,
		},
		{
			name:    "admission period by start date",
			columns: []string{"Código", "Fecha Inicio"},
			role:    RoleAdmissionPeriod,
			want:    "Fecha Inicio",
			ok:      true,
		},
		{
			name:    "score",
			columns: []string{"Puntaje Criterio 1"},
			role:    RoleScore,
			want:    "Puntaje Criterio 1",
			ok:      true,
		},
		{
			name:    "no match",
			columns: []string{"foo", "bar"},
			role:    RoleGoal,
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.columns, tt.role)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_TrimsAndLowercases(t *testing.T) {
	got, ok := Resolve([]string{"  COMPETENCIA  "}, RoleCompetency)
	require.True(t, ok)
	assert.Equal(t, "  COMPETENCIA  ", got, "original header is returned, not the normalized form")
}

func TestResolveAll(t *testing.T) {
	columns := []string{"semestre o ciclo", "competencia", "puntaje criterio"}

	resolved, complete := ResolveAll(columns, RolePeriod, RoleCompetency, RoleScore)
	require.True(t, complete)
	assert.Len(t, resolved, 3)

	resolved, complete = ResolveAll(columns, RolePeriod, RoleGoal)
	assert.False(t, complete)
	assert.Len(t, resolved, 1)
	assert.Equal(t, "semestre o ciclo", resolved[RolePeriod])
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "period", RolePeriod.String())
	assert.Equal(t, "student_id", RoleStudentID.String())
	assert.Equal(t, "unknown", Role(99).String())
}
