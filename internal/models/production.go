package models

// Machine is one piece of equipment in the plant fleet
type Machine struct {
	ID                string `json:"maquina_id"`
	Type              string `json:"tipo"`
	Manufacturer      string `json:"fabricante"`
	ManufacturingYear string `json:"ano"`
	LineID            string `json:"linha_id"`
}

// Batch is one manufacturing run of a product on one machine
type Batch struct {
	ID            string `json:"lote_id"`
	ProductID     string `json:"produto_id"`
	LineID        string `json:"linha_id"`
	MachineID     string `json:"maquina_id"`
	StartTime     string `json:"inicio_producao"`
	EndTime       string `json:"fim_producao"`
	DurationHours string `json:"duracao_horas"`
}

// ProductionOrder carries the batch fields plus sensor averages and yield
type ProductionOrder struct {
	ID                  string `json:"ordem_producao_id"`
	BatchID             string `json:"lote_id"`
	ProductID           string `json:"produto_id"`
	LineID              string `json:"linha_id"`
	MachineID           string `json:"maquina_id"`
	ShiftID             string `json:"turno_id"`
	StartTime           string `json:"inicio"`
	NominalCycleMinutes string `json:"ciclo_minuto_nominal"`
	DurationHours       string `json:"duracao_horas"`
	AvgTemperature      string `json:"temperatura_media_c"`
	AvgVibration        string `json:"vibracao_media_rpm"`
	AvgPressure         string `json:"pressao_media_bar"`
	QuantityPlanned     string `json:"quantidade_planejada"`
	QuantityProduced    string `json:"quantidade_produzida"`
	QuantityScrapped    string `json:"quantidade_refugada"`
}

// QualityTest is the end-of-line test of a batch
type QualityTest struct {
	ID                 string `json:"teste_id"`
	BatchID            string `json:"lote_id"`
	ProductID          string `json:"produto_id"`
	TestedAt           string `json:"data_teste"`
	MeasuredVoltage    string `json:"tensao_medida_v"`
	InternalResistance string `json:"resistencia_interna_mohm"`
	TestedCapacityAh   string `json:"capacidade_ah_teste"`
	DefectID           string `json:"defeito_id"`
	Approved           string `json:"aprovado"`
}

// Alert is raised when a machine reading crosses a fixed threshold
type Alert struct {
	ID            string  `json:"alerta_id"`
	OccurredAt    string  `json:"data_ocorrencia"`
	Level         string  `json:"nivel"`
	MachineID     string  `json:"maquina_id"`
	Message       string  `json:"mensagem"`
	MeasuredValue float64 `json:"valor_medido"`
}

// MaintenanceEvent is a maintenance intervention on a machine
type MaintenanceEvent struct {
	ID              string `json:"evento_manutencao_id"`
	MachineID       string `json:"maquina_id"`
	LineID          string `json:"linha_id"`
	TypeID          string `json:"tipo_manutencao_id"`
	StartTime       string `json:"inicio"`
	EndTime         string `json:"fim"`
	DurationMinutes string `json:"duracao_min"`
	Criticality     string `json:"criticidade"`
}
