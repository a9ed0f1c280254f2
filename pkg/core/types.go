package core

// 输入文件中的列
const (
	ColFlDate          = "fl_date"
	ColCrsDepTime      = "crs_dep_time"
	ColCrsArrTime      = "crs_arr_time"
	ColCrsElapsedTime  = "crs_elapsed_time"
	ColDistance        = "distance"
	ColArrDelay        = "arr_delay"
	ColOpUniqueCarrier = "op_unique_carrier"
	ColMktCarrierFlNum = "mkt_carrier_fl_num"
	ColOpCarrierFlNum  = "op_carrier_fl_num"
	ColOriginAirportId = "origin_airport_id"
	ColOrigin          = "origin"
	ColDestAirportId   = "dest_airport_id"
	ColDest            = "dest"
)

// 处理过程中生成的列
const (
	ColMonth = "month"
	ColYFT   = "yFT"
	ColYSign = "y_sign"
	// ColRow 行号，由Loader生成，贯穿所有阶段，用于校验拼接时的行顺序。不会写出
	ColRow = "_row"
	// ColLine 记录在输入文件中开始的物理行号（表头为第1行），用于报告解析错误。不会写出
	ColLine = "_line"
)

// ScaledSuffix 缩放后的数值列后缀（fit-transformed）
const ScaledSuffix = "FT"

// 目标值的默认接受范围（分钟），闭区间
const (
	DefaultTargetLower = -49.5
	DefaultTargetUpper = 42.5
)

const Tab = '\t'

// NumericColumns 需要缩放的数值列，顺序即输出顺序
var NumericColumns = []string{ColCrsDepTime, ColCrsArrTime, ColCrsElapsedTime, ColDistance}

// TimeColumns 以HHMM整数表示的时刻列
var TimeColumns = []string{ColCrsDepTime, ColCrsArrTime}

// RecastColumns 原本是数字，但应当作为类别处理的标识列
var RecastColumns = []string{ColMktCarrierFlNum, ColOpCarrierFlNum, ColOriginAirportId, ColDestAirportId}

// CategoricalColumns 始终作为类别处理的列，不论取值是否像数字、表是否为空
var CategoricalColumns = []string{ColFlDate, ColOpUniqueCarrier, ColOrigin, ColDest}

// DefaultPruneColumns 与其他列高度相关或会泄露目标的列
var DefaultPruneColumns = []string{
	"mkt_unique_carrier",
	"branded_code_share",
	"mkt_carrier",
	ColMktCarrierFlNum,
	ColOriginAirportId,
	"origin_city_name",
	ColDestAirportId,
	"dest_city_name",
	"dup",
	"tail_num",
	ColOpCarrierFlNum,
	ColArrDelay,
}

// MissingValues 读取时视为缺失的字符串
var MissingValues = map[string]struct{}{
	"":    {},
	"NA":  {},
	"NaN": {},
	"nan": {},
}

func IsMissing(s string) bool {
	_, ok := MissingValues[s]
	return ok
}
