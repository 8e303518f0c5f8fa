package simulation

import "github.com/autovolt/lakehouse/internal/models"

// Reference data of the AutoVolt plant. These tables never change and are
// seeded into the lake once per deployment.
var (
	ProductLines = []models.ProductLine{
		{ID: "L01", Description: "Linha de Montagem Automotiva", Shifts: "3"},
		{ID: "L02", Description: "Linha de Injeção Plástica", Shifts: "3"},
		{ID: "L03", Description: "Linha de Envase Químico", Shifts: "3"},
		{ID: "L04", Description: "Linha de Pesados", Shifts: "2"},
		{ID: "L05", Description: "Linha de Testes", Shifts: "1"},
	}

	Shifts = []models.Shift{
		{ID: "T1", Window: "06:00 - 14:00", PerformanceCoefficient: "1.0"},
		{ID: "T2", Window: "14:00 - 22:00", PerformanceCoefficient: "0.98"},
		{ID: "T3", Window: "22:00 - 06:00", PerformanceCoefficient: "0.95"},
	}

	MaintenanceTypes = []models.MaintenanceType{
		{ID: "TM01", Description: "Preventiva", DefaultCriticality: "Baixa"},
		{ID: "TM02", Description: "Corretiva", DefaultCriticality: "Alta"},
		{ID: "TM03", Description: "Preditiva", DefaultCriticality: "Média"},
	}

	Defects = []models.Defect{
		{ID: "D00", Description: "Sem Defeito", Severity: "Nenhuma"},
		{ID: "D01", Description: "Vazamento de Ácido", Severity: "Alta"},
		{ID: "D02", Description: "Baixa Tensão", Severity: "Média"},
		{ID: "D03", Description: "Caixa Rachada", Severity: "Média"},
		{ID: "D04", Description: "Sobreaquecimento (Curto)", Severity: "Crítica"},
		{ID: "D05", Description: "Terminal Oxidado", Severity: "Baixa"},
	}

	RawMaterials = []models.RawMaterial{
		{ID: "MP001", Name: "Chumbo"},
		{ID: "MP002", Name: "Ácido Sulfúrico"},
		{ID: "MP003", Name: "Polipropileno"},
		{ID: "MP004", Name: "Separadores"},
		{ID: "MP005", Name: "Eletrólito"},
	}

	Suppliers = []models.Supplier{
		{ID: "F001", Category: "Chumbo/Metais", LeadTimeDays: "10", Rating: "A",
			RegisteredAt: "2022-01-10", LastEvaluationAt: "2025-01-01", Description: "Fornecedor Metal 1"},
		{ID: "F002", Category: "Químicos/Ácidos", LeadTimeDays: "7", Rating: "A",
			RegisteredAt: "2022-02-15", LastEvaluationAt: "2025-01-01", Description: "Indústria Química 2"},
		{ID: "F003", Category: "Plásticos/Polímeros", LeadTimeDays: "14", Rating: "B",
			RegisteredAt: "2022-03-20", LastEvaluationAt: "2025-01-01", Description: "PlastCorp 3"},
		{ID: "F004", Category: "Componentes Elétricos", LeadTimeDays: "20", Rating: "A",
			RegisteredAt: "2022-05-05", LastEvaluationAt: "2025-01-01", Description: "ElectroParts 4"},
	}

	Products = []models.Product{
		{ID: "BAT001", Model: "AV-50Ah", VoltageV: "12", CapacityAh: "50", Segment: "Reposição", LaunchDate: "2022-02-01"},
		{ID: "BAT002", Model: "AV-60Ah", VoltageV: "12", CapacityAh: "60", Segment: "Reposição", LaunchDate: "2022-06-15"},
		{ID: "BAT003", Model: "AV-70Ah", VoltageV: "24", CapacityAh: "70", Segment: "Montadora", LaunchDate: "2023-01-10"},
		{ID: "BAT004", Model: "AV-90Ah", VoltageV: "12", CapacityAh: "90", Segment: "Reposição", LaunchDate: "2023-08-20"},
		{ID: "BAT005", Model: "AV-100Ah", VoltageV: "12", CapacityAh: "100", Segment: "Montadora", LaunchDate: "2024-05-01"},
	}
)

// Attribute pools for generated entities
var (
	machineTypes         = []string{"Montadora", "Injetora", "Envasadora", "Robo", "Tester"}
	machineManufacturers = []string{"Siemens", "Bosch", "ABB", "Kuka", "Engel"}
	machineYears         = []int{2019, 2020, 2021, 2022, 2023, 2024}

	customerTypes  = []string{"Distribuidor", "Autopeças", "Montadora"}
	customerCities = []string{"SP", "RJ", "MG", "RS", "PE", "BA", "PR", "SC"}
	customerPlans  = []string{"Básico", "Standard", "Premium"}

	warrantyStatuses       = []string{"Aprovada", "Negada", "Negada - Mau Uso"}
	maintenanceCriticality = []string{"Baixa", "Média", "Alta"}
)

func ids[T any](xs []T, id func(T) string) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = id(x)
	}
	return out
}

var (
	productIDs         = ids(Products, func(p models.Product) string { return p.ID })
	lineIDs            = ids(ProductLines, func(l models.ProductLine) string { return l.ID })
	supplierIDs        = ids(Suppliers, func(s models.Supplier) string { return s.ID })
	rawMaterialIDs     = ids(RawMaterials, func(m models.RawMaterial) string { return m.ID })
	defectIDs          = ids(Defects, func(d models.Defect) string { return d.ID })
	maintenanceTypeIDs = ids(MaintenanceTypes, func(m models.MaintenanceType) string { return m.ID })
)
