package models

// ProductLine is a production line of the plant
type ProductLine struct {
	ID          string `json:"linha_id"`
	Description string `json:"descricao"`
	Shifts      string `json:"turnos_operacionais"`
}

// Shift is a working window with its performance coefficient
type Shift struct {
	ID                     string `json:"turno_id"`
	Window                 string `json:"janela"`
	PerformanceCoefficient string `json:"coef_performance"`
}

// MaintenanceType classifies maintenance events
type MaintenanceType struct {
	ID                 string `json:"tipo_manutencao_id"`
	Description        string `json:"descricao"`
	DefaultCriticality string `json:"criticidade_padrao"`
}

// Defect is a battery defect class
type Defect struct {
	ID          string `json:"defeito_id"`
	Description string `json:"descricao"`
	Severity    string `json:"gravidade"`
}

// RawMaterial is a purchasable input material
type RawMaterial struct {
	ID   string `json:"materia_prima_id"`
	Name string `json:"nome_material"`
}

// Supplier sells raw materials
type Supplier struct {
	ID               string `json:"fornecedor_id"`
	Category         string `json:"categoria"`
	LeadTimeDays     string `json:"leadtime_dias"`
	Rating           string `json:"qualificacao"`
	RegisteredAt     string `json:"data_cadastro"`
	LastEvaluationAt string `json:"data_ultima_avaliacao"`
	Description      string `json:"descricao"`
}

// Product is a battery model in the catalog
type Product struct {
	ID               string `json:"produto_id"`
	Model            string `json:"modelo"`
	VoltageV         string `json:"tensao_v"`
	CapacityAh       string `json:"capacidade_ah"`
	Segment          string `json:"linha_segmento"`
	LaunchDate       string `json:"data_lancamento"`
	DiscontinuedDate string `json:"data_descontinuacao"`
}

// CalendarMonth is one row of the year-month dimension
type CalendarMonth struct {
	ID        string `json:"ano_mes_id"`
	Year      string `json:"ano"`
	Month     string `json:"mes"`
	MonthName string `json:"nome_mes"`
	Quarter   string `json:"trimestre"`
	Label     string `json:"ano_mes_label"`
}

// SalesTarget is the monthly sales goal
type SalesTarget struct {
	ID             string `json:"meta_id"`
	YearMonthID    string `json:"ano_mes_id"`
	TargetQuantity string `json:"meta_quantidade"`
	TargetValue    string `json:"meta_valor"`
}
