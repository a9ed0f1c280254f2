package output

import (
	"github.com/packagewjx/flight-feature-prep/internal/lookup"
	"github.com/packagewjx/flight-feature-prep/internal/preprocess"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"io/ioutil"
	"os"
	"path/filepath"
)

// Report 一次运行的记录：使用的选项、拟合的参数、输出的列与文件
type Report struct {
	Name    string        `yaml:"name"`
	Input   string        `yaml:"input"`
	Options ReportOptions `yaml:"options"`

	Scaler   *preprocess.ScalerParams `yaml:"scaler"`
	Target   map[string]float64       `yaml:"target"`
	Features []string                 `yaml:"features"`
	Targets  []string                 `yaml:"targets"`
	Stats    preprocess.Stats         `yaml:"stats"`
	Files    *Result                  `yaml:"files,omitempty"`
}

type ReportOptions struct {
	Scaler      preprocess.ScalerType `yaml:"scaler"`
	OneHot      bool                  `yaml:"onehot"`
	TimeUnit    preprocess.TimeUnit   `yaml:"timeUnit"`
	Lower       float64               `yaml:"lower"`
	Upper       float64               `yaml:"upper"`
	Sign        bool                  `yaml:"sign"`
	Prune       []string              `yaml:"prune"`
	// 查表模式下承运人与月份表的名称及条目数
	Tables      map[string]int        `yaml:"tables,omitempty"`
	Format      Format                `yaml:"format,omitempty"`
	Compression Compression           `yaml:"compression,omitempty"`
}

func NewReport(input string, opts preprocess.Options, result *preprocess.Result, outOpts Options, files *Result) *Report {
	report := &Report{
		Name:  outOpts.Name,
		Input: input,
		Options: ReportOptions{
			Scaler:   opts.Scaler,
			OneHot:   opts.OneHot,
			TimeUnit: opts.TimeUnit,
			Lower:    opts.Bounds.Lower,
			Upper:    opts.Bounds.Upper,
			Sign:     opts.Sign,
			Prune:    opts.Prune,
		},
		Scaler:   result.Params,
		Target:   result.TargetParams,
		Features: result.X.Names(),
		Targets:  result.Y.Names(),
		Stats:    result.Stats,
	}
	if !opts.OneHot {
		report.Options.Tables = make(map[string]int)
		for _, table := range []*lookup.Table{opts.Carrier, opts.Month} {
			if table != nil {
				report.Options.Tables[table.Name()] = table.Len()
			}
		}
	}
	if outOpts.Write {
		report.Options.Format = outOpts.Format
		report.Options.Compression = outOpts.Compression
		report.Files = files
	}
	return report
}

// WriteReport 写出到dir下的report_<name>.yaml，返回文件路径
func WriteReport(report *Report, dir string) (string, error) {
	if report.Name == "" {
		return "", errors.New("输出名称为空")
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "创建输出目录失败")
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return "", errors.Wrap(err, "序列化运行报告失败")
	}
	path := filepath.Join(dir, ReportPrefix+report.Name+".yaml")
	if err = ioutil.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrap(err, "写出运行报告失败")
	}
	return path, nil
}
