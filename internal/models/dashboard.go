package models

// Dashboard is the aggregate payload of /dashboard/
type Dashboard struct {
	TotalStudents         int             `json:"total_alunos"`
	TotalTeachers         int             `json:"total_professores"`
	TotalClasses          int             `json:"total_turmas"`
	ActiveEnrollments     int             `json:"total_matriculas_ativas"`
	DocumentsCurrentMonth int             `json:"documentos_mes_atual"`
	UpcomingEvents        []UpcomingEvent `json:"proximos_eventos"`
	LatestStudents        []LatestStudent `json:"ultimos_alunos"`
	LatestActivities      []Activity      `json:"ultimas_atividades"`
}

// UpcomingEvent is a calendar entry shown on the dashboard
type UpcomingEvent struct {
	ID        int64  `json:"id"`
	Title     string `json:"titulo"`
	StartDate string `json:"data_inicio"`
	Kind      string `json:"tipo"`
}

// LatestStudent is a recently created student shown on the dashboard
type LatestStudent struct {
	ID       int64   `json:"id"`
	FullName string  `json:"nome_completo"`
	Photo    *string `json:"foto"`
}

// Activity is an audit entry shown on the dashboard
type Activity struct {
	ID       int64        `json:"id"`
	Action   string       `json:"acao"`
	DateTime string       `json:"data_hora"`
	User     ActivityUser `json:"usuario"`
}

// ActivityUser identifies who performed an activity
type ActivityUser struct {
	Username string `json:"username"`
}
