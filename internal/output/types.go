package output

type Format string

const (
	CSV     = Format("csv")
	Parquet = Format("parquet")
	XLSX    = Format("xlsx")
)

var Formats = []Format{CSV, Parquet, XLSX}

type Compression string

const (
	None = Compression("none")
	Gzip = Compression("gzip")
	Zstd = Compression("zstd")
)

var Compressions = []Compression{None, Gzip, Zstd}

const (
	FeaturePrefix = "X_"
	TargetPrefix  = "y_"
	ReportPrefix  = "report_"
)

type Options struct {
	// 为false时不写出任何文件
	Write bool
	Name  string
	Dir   string
	// 为空时为csv
	Format Format
	// csv文件整体压缩；parquet使用对应的列压缩编码；xlsx忽略
	Compression Compression
}

func DefaultOptions(name string) Options {
	return Options{
		Write:       true,
		Name:        name,
		Dir:         ".",
		Format:      CSV,
		Compression: None,
	}
}

// File 写出的一个文件
type File struct {
	Path    string `yaml:"path"`
	Rows    int    `yaml:"rows"`
	Columns int    `yaml:"columns"`
	// 写入磁盘的字节数
	Bytes uint64 `yaml:"bytes"`
	// 未压缩内容的xxhash64，十六进制
	Digest string `yaml:"digest"`
}

type Result struct {
	X File `yaml:"x"`
	Y File `yaml:"y"`
}
