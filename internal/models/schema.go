package models

import "sort"

// FieldType is the warehouse column type of a bronze field
type FieldType string

const (
	TypeString    FieldType = "STRING"
	TypeTimestamp FieldType = "TIMESTAMP"
	TypeFloat     FieldType = "FLOAT64"
)

// Field is one column of a bronze table
type Field struct {
	Name string
	Type FieldType
}

// Schema is the ordered column list of a bronze table
type Schema []Field

// Names returns the column names in declaration order
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Lookup returns the field with the given name
func (s Schema) Lookup(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Bronze table names
const (
	TableLine            = "raw_linha"
	TableSalesTarget     = "raw_metas_vendas"
	TableCalendar        = "raw_tempo"
	TableMaintenanceType = "raw_tipo_manut"
	TableShift           = "raw_turno"
	TableProduct         = "raw_produto"
	TableMachine         = "raw_maquina"
	TableSupplier        = "raw_fornecedor"
	TableDefect          = "raw_defeito"
	TableRawMaterial     = "raw_materia_prima"
	TableCustomer        = "raw_cliente"
	TableBatch           = "raw_lote"
	TableProduction      = "raw_producao"
	TableQuality         = "raw_qualidade"
	TablePurchase        = "raw_compras"
	TableLotPurchase     = "raw_map_lote_compras"
	TableSale            = "raw_vendas"
	TableWarranty        = "raw_garantia"
	TableMaintenance     = "raw_manutencao"
	TableAlert           = "monitoramento_alertas"
)

func stringFields(names ...string) Schema {
	s := make(Schema, len(names))
	for i, n := range names {
		s[i] = Field{Name: n, Type: TypeString}
	}
	return s
}

// Schemas holds the warehouse schema of every bronze table
var Schemas = map[string]Schema{
	TableLine:            stringFields("linha_id", "descricao", "turnos_operacionais"),
	TableSalesTarget:     stringFields("meta_id", "ano_mes_id", "meta_quantidade", "meta_valor"),
	TableCalendar:        stringFields("ano_mes_id", "ano", "mes", "nome_mes", "trimestre", "ano_mes_label"),
	TableMaintenanceType: stringFields("tipo_manutencao_id", "descricao", "criticidade_padrao"),
	TableShift:           stringFields("turno_id", "janela", "coef_performance"),
	TableProduct: stringFields("produto_id", "modelo", "tensao_v", "capacidade_ah", "linha_segmento",
		"data_lancamento", "data_descontinuacao"),
	TableMachine: stringFields("maquina_id", "tipo", "fabricante", "ano", "linha_id"),
	TableSupplier: stringFields("fornecedor_id", "categoria", "leadtime_dias", "qualificacao", "data_cadastro",
		"data_ultima_avaliacao", "descricao"),
	TableDefect:      stringFields("defeito_id", "descricao", "gravidade"),
	TableRawMaterial: stringFields("materia_prima_id", "nome_material"),
	TableCustomer: stringFields("cliente_id", "tipo_cliente", "cidade", "tipo_plano", "data_cadastro",
		"data_ultima_compra", "versao"),
	TableBatch: stringFields("lote_id", "produto_id", "linha_id", "maquina_id", "inicio_producao",
		"fim_producao", "duracao_horas"),
	TableProduction: stringFields("ordem_producao_id", "lote_id", "produto_id", "linha_id", "maquina_id",
		"turno_id", "inicio", "ciclo_minuto_nominal", "duracao_horas", "temperatura_media_c",
		"vibracao_media_rpm", "pressao_media_bar", "quantidade_planejada", "quantidade_produzida",
		"quantidade_refugada"),
	TableQuality: stringFields("teste_id", "lote_id", "produto_id", "data_teste", "tensao_medida_v",
		"resistencia_interna_mohm", "capacidade_ah_teste", "defeito_id", "aprovado"),
	TablePurchase: stringFields("compra_id", "fornecedor_id", "materia_prima_id", "data_compra",
		"quantidade_comprada", "custo_unitario", "custo_total"),
	TableLotPurchase: stringFields("lote_id", "compra_id"),
	TableSale: stringFields("venda_id", "ano_mes_id", "cliente_id", "produto_id", "ordem_producao_id",
		"lote_id", "data_venda", "quantidade_vendida", "valor_total_venda"),
	TableWarranty: stringFields("garantia_id", "cliente_id", "produto_id", "lote_id", "data_reclamacao",
		"dias_pos_venda", "defeito_id", "status", "tempo_resposta_dias", "custo_garantia"),
	TableMaintenance: stringFields("evento_manutencao_id", "maquina_id", "linha_id", "tipo_manutencao_id",
		"inicio", "fim", "duracao_min", "criticidade"),
	TableAlert: {
		{Name: "alerta_id", Type: TypeString},
		{Name: "data_ocorrencia", Type: TypeTimestamp},
		{Name: "nivel", Type: TypeString},
		{Name: "maquina_id", Type: TypeString},
		{Name: "mensagem", Type: TypeString},
		{Name: "valor_medido", Type: TypeFloat},
	},
}

// TableNames returns every bronze table name, sorted
func TableNames() []string {
	names := make([]string, 0, len(Schemas))
	for name := range Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
