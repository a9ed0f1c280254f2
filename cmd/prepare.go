/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"github.com/packagewjx/flight-feature-prep/internal/lookup"
	"github.com/packagewjx/flight-feature-prep/internal/output"
	"github.com/packagewjx/flight-feature-prep/internal/preprocess"
	"github.com/packagewjx/flight-feature-prep/internal/reference"
	"github.com/packagewjx/flight-feature-prep/pkg/core"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"io"
	"log"
	"os"
	"strings"
	"unicode/utf8"
)

// 配置项
const (
	KeyScaler       = "scaler"
	KeyOneHot       = "onehot"
	KeyTimeUnit     = "timeUnit"
	KeyFilterLower  = "filter.lower"
	KeyFilterUpper  = "filter.upper"
	KeySign         = "sign"
	KeyDelimiter    = "delimiter"
	KeyWrite        = "write"
	KeyFormat       = "format"
	KeyCompression  = "compression"
	KeyOutDir       = "outDir"
	KeyReferenceDir = "referenceDir"
	KeyReport       = "report"
	KeyCarrierTable = "lookup.carrier"
	KeyMonthTable   = "lookup.month"
)

const (
	FlagScaler       = "scaler"
	FlagOneHot       = "onehot"
	FlagTimeUnit     = "time-unit"
	FlagFilterLower  = "lower"
	FlagFilterUpper  = "upper"
	FlagSign         = "sign"
	FlagDelimiter    = "delimiter"
	FlagWrite        = "write"
	FlagFormat       = "format"
	FlagCompression  = "compression"
	FlagOutDir       = "out-dir"
	FlagReferenceDir = "reference-dir"
	FlagReport       = "report"
)

// prepareCmd represents the prepare command
var prepareCmd = &cobra.Command{
	Use:   "prepare inputFile outputName",
	Short: "将航班记录文件转换为特征矩阵X_<outputName>与目标y_<outputName>",
	Long: "依次执行：过滤到达延误不在[lower, upper]内的行；将出发、到达时刻转换为小时，并与计划飞行时间、距离一起缩放；\n" +
		"由fl_date得到month，删除冗余的标识列，对类别列做独热编码或替换为历史平均延误（--onehot=false）；\n" +
		"删除含缺失值的行后写出。查表模式需要origin_arr_delay.txt与dest_arr_delay.txt，或已导入参考表的MySQL。",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("参数错误")
		} else if args[1] == "" {
			return fmt.Errorf("输出名称不能为空")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := preprocessOptions()
		if err != nil {
			return err
		}
		outOpts := outputOptions(args[1])

		if !opts.OneHot {
			source, closer, err := referenceSource()
			if err != nil {
				return err
			}
			defer func() {
				_ = closer.Close()
			}()
			opts.Reference = source
		}

		log.Println("读取并处理", args[0])
		result, err := preprocess.RunFile(args[0], opts)
		if err != nil {
			return err
		}

		files, err := output.Write(result.X, result.Y, outOpts)
		if err != nil {
			return err
		}
		if outOpts.Write {
			log.Printf("输出%s与%s，共%d行\n", files.X.Path, files.Y.Path, result.Stats.Output)
		}

		if viper.GetBool(KeyReport) {
			path, err := output.WriteReport(output.NewReport(args[0], opts, result, outOpts, files), outOpts.Dir)
			if err != nil {
				return err
			}
			log.Println("运行报告已写入", path)
		}
		return nil
	},
}

func preprocessOptions() (preprocess.Options, error) {
	opts := preprocess.DefaultOptions()
	opts.Scaler = preprocess.ScalerType(strings.ToLower(viper.GetString(KeyScaler)))
	if _, err := preprocess.NewScaler(opts.Scaler); err != nil {
		return opts, err
	}
	opts.TimeUnit = preprocess.TimeUnit(strings.ToLower(viper.GetString(KeyTimeUnit)))
	switch opts.TimeUnit {
	case preprocess.TimeUnitHour, preprocess.TimeUnitDecimal, preprocess.TimeUnitFractional:
	default:
		return opts, fmt.Errorf("未知的时刻转换方式：%s", opts.TimeUnit)
	}
	opts.OneHot = viper.GetBool(KeyOneHot)
	opts.Sign = viper.GetBool(KeySign)
	opts.Bounds = preprocess.Bounds{
		Lower: viper.GetFloat64(KeyFilterLower),
		Upper: viper.GetFloat64(KeyFilterUpper),
	}
	if opts.Bounds.Lower > opts.Bounds.Upper {
		return opts, fmt.Errorf("过滤范围错误：[%v, %v]", opts.Bounds.Lower, opts.Bounds.Upper)
	}

	delimiter, err := parseDelimiter(viper.GetString(KeyDelimiter))
	if err != nil {
		return opts, err
	}
	opts.Delimiter = delimiter

	carrier, err := tableOverrides(KeyCarrierTable, true)
	if err != nil {
		return opts, err
	}
	opts.Carrier = lookup.Carrier().WithOverrides(carrier)
	month, err := tableOverrides(KeyMonthTable, false)
	if err != nil {
		return opts, err
	}
	opts.Month = lookup.Month().WithOverrides(month)

	opts.Logger = log.New(os.Stderr, "", log.LstdFlags)
	return opts, nil
}

// tableOverrides 读取配置文件中覆盖内置表的值。viper的键不区分大小写，承运人代码统一转为大写
func tableOverrides(key string, upper bool) (map[string]float64, error) {
	values := make(map[string]float64)
	if !viper.IsSet(key) {
		return values, nil
	}
	if err := viper.UnmarshalKey(key, &values); err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("配置项%s错误", key))
	}
	if !upper {
		return values, nil
	}
	result := make(map[string]float64, len(values))
	for k, v := range values {
		result[strings.ToUpper(k)] = v
	}
	return result, nil
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "", "tab", "\\t":
		return core.Tab, nil
	case "comma":
		return ',', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("分隔符必须是单个字符：%q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// outputOptions 在默认值上应用已设置的配置项
func outputOptions(name string) output.Options {
	opts := output.DefaultOptions(name)
	opts.Write = viper.GetBool(KeyWrite)
	if dir := viper.GetString(KeyOutDir); dir != "" {
		opts.Dir = dir
	}
	if format := viper.GetString(KeyFormat); format != "" {
		opts.Format = output.Format(strings.ToLower(format))
	}
	if compression := viper.GetString(KeyCompression); compression != "" {
		opts.Compression = output.Compression(strings.ToLower(compression))
	}
	return opts
}

func dbConfig() *reference.DBConfig {
	return &reference.DBConfig{
		Host:     viper.GetString(KeyMysqlHost),
		User:     viper.GetString(KeyMysqlUser),
		Password: viper.GetString(KeyMysqlPassword),
		Database: viper.GetString(KeyMysqlDatabase),
	}
}

type nopCloser struct{}

func (nopCloser) Close() error {
	return nil
}

// referenceSource 设置了MySQL地址时从数据库读取参考表，否则读取referenceDir下的文件
func referenceSource() (reference.Source, io.Closer, error) {
	if viper.GetString(KeyMysqlHost) == "" {
		return reference.NewFileSource(viper.GetString(KeyReferenceDir)), nopCloser{}, nil
	}
	source, err := reference.NewDBSource(dbConfig())
	if err != nil {
		return nil, nil, err
	}
	return source, source, nil
}

func init() {
	rootCmd.AddCommand(prepareCmd)

	flags := prepareCmd.Flags()
	flags.StringP(FlagScaler, "s", string(preprocess.Standard), "数值列的缩放方式：standard、minmax、robust或power")
	flags.Bool(FlagOneHot, true, "类别列做独热编码。为false时替换为历史平均延误")
	flags.String(FlagTimeUnit, string(preprocess.TimeUnitHour),
		"HHMM时刻转换为小时的方式：hour（只保留小时）、decimal（除以100）或fractional（小时加分钟/60）")
	flags.Float64(FlagFilterLower, core.DefaultTargetLower, "保留的到达延误下限（分钟，含）")
	flags.Float64(FlagFilterUpper, core.DefaultTargetUpper, "保留的到达延误上限（分钟，含）")
	flags.Bool(FlagSign, true, "在y中输出延误符号列y_sign")
	flags.StringP(FlagDelimiter, "d", "tab", "输入文件的分隔符")
	flags.Bool(FlagWrite, true, "写出X与y")
	flags.StringP(FlagFormat, "f", string(output.CSV), "输出格式：csv、parquet或xlsx")
	flags.StringP(FlagCompression, "c", string(output.None), "压缩方式：none、gzip或zstd")
	flags.StringP(FlagOutDir, "o", ".", "输出目录")
	flags.String(FlagReferenceDir, ".", "origin_arr_delay.txt与dest_arr_delay.txt所在目录")
	flags.Bool(FlagReport, false, "同时写出运行报告report_<outputName>.yaml")

	bindings := map[string]string{
		KeyScaler:       FlagScaler,
		KeyOneHot:       FlagOneHot,
		KeyTimeUnit:     FlagTimeUnit,
		KeyFilterLower:  FlagFilterLower,
		KeyFilterUpper:  FlagFilterUpper,
		KeySign:         FlagSign,
		KeyDelimiter:    FlagDelimiter,
		KeyWrite:        FlagWrite,
		KeyFormat:       FlagFormat,
		KeyCompression:  FlagCompression,
		KeyOutDir:       FlagOutDir,
		KeyReferenceDir: FlagReferenceDir,
		KeyReport:       FlagReport,
	}
	for key, flag := range bindings {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}
