package models

// Customer is one snapshot of a customer. Rows are append-only: a changed
// attribute produces a new row with a higher Version.
type Customer struct {
	ID               string `json:"cliente_id"`
	Type             string `json:"tipo_cliente"`
	City             string `json:"cidade"`
	PlanTier         string `json:"tipo_plano"`
	RegistrationDate string `json:"data_cadastro"`
	LastPurchaseDate string `json:"data_ultima_compra"`
	Version          string `json:"versao"`
}

// Purchase is a raw-material acquisition
type Purchase struct {
	ID            string `json:"compra_id"`
	SupplierID    string `json:"fornecedor_id"`
	RawMaterialID string `json:"materia_prima_id"`
	PurchasedAt   string `json:"data_compra"`
	Quantity      string `json:"quantidade_comprada"`
	UnitCost      string `json:"custo_unitario"`
	TotalCost     string `json:"custo_total"`
}

// LotPurchaseLink records that a batch consumed a purchase
type LotPurchaseLink struct {
	BatchID    string `json:"lote_id"`
	PurchaseID string `json:"compra_id"`
}

// Sale references the sold batch, its production order and the customer
type Sale struct {
	ID                string `json:"venda_id"`
	YearMonthID       string `json:"ano_mes_id"`
	CustomerID        string `json:"cliente_id"`
	ProductID         string `json:"produto_id"`
	ProductionOrderID string `json:"ordem_producao_id"`
	BatchID           string `json:"lote_id"`
	SaleDate          string `json:"data_venda"`
	Quantity          string `json:"quantidade_vendida"`
	TotalValue        string `json:"valor_total_venda"`
}

// Warranty is a claim raised against a sale
type Warranty struct {
	ID               string `json:"garantia_id"`
	CustomerID       string `json:"cliente_id"`
	ProductID        string `json:"produto_id"`
	BatchID          string `json:"lote_id"`
	ComplaintDate    string `json:"data_reclamacao"`
	DaysAfterSale    string `json:"dias_pos_venda"`
	DefectID         string `json:"defeito_id"`
	Status           string `json:"status"`
	ResponseTimeDays string `json:"tempo_resposta_dias"`
	Cost             string `json:"custo_garantia"`
}
