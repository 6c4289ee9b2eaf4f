package types

// =============================================================================
// OUTPUT COLUMNS
// =============================================================================

// Column names of the movement report, in their default order.
const (
	ColStore        = "LOJA"
	ColDate         = "DATA_MOVIMENTO"
	ColTime         = "HORA_MOVIMENTO"
	ColUsername     = "NOME_USUARIO"
	ColMovementType = "TIPO_MOVIMENTO"
	ColProductCode  = "CODIGO_PRODUTO"
	ColGradeCode    = "COD_GRADE"
	ColDescription  = "DESCRICAO"
	ColColor        = "COR"
	ColSize         = "TAMANHO"
	ColUnit         = "UNIDADE"
	ColGroup        = "GRUPO"
	ColSubGroup     = "SUBGRUPO"
	ColBrand        = "MARCA"
	ColQuantity     = "QUANTIDADE"
	ColCostPrice    = "PRECO_CUSTO"
	ColSellPrice    = "PRECO_VENDA"
	ColMarkup       = "MKP"
	ColRevenue      = "FATURAMENTO"
	ColCostTotal    = "CUSTO_TOTAL"
	ColGrossProfit  = "LUCRO_BRUTO"
	ColGrossMargin  = "MARGEM_BRUTA"
)

// Extra columns of the stock report.
const (
	ColQtyIn     = "QTDE_ENTRADA"
	ColQtyOut    = "QTDE_SAIDA"
	ColBalance   = "SALDO"
	ColCostValue = "CUSTO_GRADE"
	ColSaleValue = "VENDA_GRADE"
)

// LineColumns is the full column set of the movement report.
var LineColumns = []string{
	ColStore, ColDate, ColTime, ColUsername, ColMovementType,
	ColProductCode, ColGradeCode, ColDescription, ColColor, ColSize,
	ColUnit, ColGroup, ColSubGroup, ColBrand,
	ColQuantity, ColCostPrice, ColSellPrice,
	ColMarkup, ColRevenue, ColCostTotal, ColGrossProfit, ColGrossMargin,
}

// KeyColumns must always be present in a persisted movement report.
var KeyColumns = []string{ColGradeCode, ColDate, ColUsername, ColMovementType}

// StockColumns is the column set of the stock report.
var StockColumns = []string{
	ColStore, ColProductCode, ColGradeCode, ColDescription, ColColor, ColSize,
	ColUnit, ColGroup, ColSubGroup, ColBrand,
	ColQtyIn, ColQtyOut, ColBalance,
	ColUsername, ColDate, ColTime,
	ColCostPrice, ColSellPrice, ColCostValue, ColSaleValue,
}

// NumericColumns are written as numbers in spreadsheet copies.
var NumericColumns = []string{
	ColQuantity, ColCostPrice, ColSellPrice,
	ColMarkup, ColRevenue, ColCostTotal, ColGrossProfit, ColGrossMargin,
	ColQtyIn, ColQtyOut, ColBalance, ColCostValue, ColSaleValue,
}

// =============================================================================
// PRODUCT STOCK COLUMNS
// =============================================================================

// Column names of the product stock export. The mixed case names are the
// ones the downstream dashboards already read.
const (
	ColProdCode        = "CODIGO"
	ColProdReference   = "REFERENCIA"
	ColProdName        = "NOME"
	ColProdQuantity    = "QUANTIDADE_PRODUTO"
	ColProdRetailPrice = "Preco_Varejo"
	ColProdCostTotal   = "Tot. Custo"
	ColProdRetailTotal = "Tot. Varejo"
	ColProdRegistered  = "DATA_CADASTRO"
	ColProdStatus      = "STATUS"
	ColProdLevel       = "NIVEL"
)

// ProductStockColumns is the column set of the product stock export.
var ProductStockColumns = []string{
	ColProdCode, ColProdReference, ColProdName, ColUnit,
	ColProdQuantity, ColCostPrice, ColProdRetailPrice,
	ColProdCostTotal, ColProdRetailTotal, ColProdRegistered,
	ColProdStatus, ColProdLevel,
}

// ProductNumericColumns are written as numbers in the spreadsheet copy.
var ProductNumericColumns = []string{
	ColProdQuantity, ColCostPrice, ColProdRetailPrice, ColProdCostTotal, ColProdRetailTotal,
}

// =============================================================================
// PERIOD REPORT COLUMNS
// =============================================================================

// Column names of the period sales report.
const (
	ColPeriodDate       = "Data"
	ColPeriodWeekday    = "Dia da Semana"
	ColPeriodNet        = "Total Líquido (A)"
	ColPeriodProducts   = "Qtde. Produtos (B)"
	ColPeriodOrders     = "Qtde. Pedidos (C)"
	ColPeriodAvgProduct = "Vl. Médio Produto (D)"
	ColPeriodAvgOrder   = "Vl. Médio Pedido (E)"
	ColPeriodDiscount   = "Desconto"
	ColPeriodSurcharge  = "Acréscimo"
	ColPeriodGross      = "Tot. Bruto"
	ColPeriodReturns    = "Devoluções Venda"
	ColPeriodCredit     = "Crédito Cliente"
	ColPeriodSeller     = "Vendedor"
	ColPeriodSales      = "Venda Bruta"
	ColPeriodNetSales   = "Venda Líquida"
)

// PeriodDetailColumns is the full column set of the daily detail.
var PeriodDetailColumns = []string{
	ColPeriodDate, ColPeriodWeekday,
	ColPeriodNet, ColPeriodProducts, ColPeriodOrders,
	ColPeriodAvgProduct, ColPeriodAvgOrder,
	ColPeriodDiscount, ColPeriodSurcharge, ColPeriodGross,
	ColPeriodReturns, ColPeriodCredit,
}

// PeriodMoneyColumns are formatted as currency in the period spreadsheet.
var PeriodMoneyColumns = []string{
	ColPeriodNet, ColPeriodAvgProduct, ColPeriodAvgOrder,
	ColPeriodDiscount, ColPeriodSurcharge, ColPeriodGross,
	ColPeriodReturns, ColPeriodCredit,
	ColPeriodSales, ColPeriodNetSales,
}

// PeriodCountColumns are formatted as integers in the period spreadsheet.
var PeriodCountColumns = []string{ColPeriodProducts, ColPeriodOrders}
