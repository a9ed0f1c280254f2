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
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log"
	"os"
	"strings"
)

const EnvPrefix = "FLIGHTPREP"

// 全局配置项
const (
	KeyMysqlHost     = "mysqlHost"
	KeyMysqlUser     = "mysqlUser"
	KeyMysqlPassword = "mysqlPassword"
	KeyMysqlDatabase = "mysqlDatabase"
)

const (
	FlagMysqlHost     = "mysql-host"
	FlagMysqlUser     = "mysql-user"
	FlagMysqlPassword = "mysql-password"
	FlagMysqlDatabase = "mysql-database"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flightprep",
	Short: "航班到达延误模型的数据预处理工具",
	Long: "读取航班记录文件，过滤异常的到达延误，缩放数值列，编码类别列，输出特征矩阵X与目标y。\n" +
		"所有选项均可写在配置文件中，或通过FLIGHTPREP_前缀的环境变量设置。",
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件（默认为$HOME/.flightprep.yaml）")
	rootCmd.PersistentFlags().String(FlagMysqlHost, "",
		"保存参考表的MySQL地址host:port。为空时读取参考表文件")
	rootCmd.PersistentFlags().String(FlagMysqlUser, "", "MySQL用户名，默认为root")
	rootCmd.PersistentFlags().String(FlagMysqlPassword, "", "MySQL密码")
	rootCmd.PersistentFlags().String(FlagMysqlDatabase, "", "MySQL数据库，默认为flights")

	_ = viper.BindPFlag(KeyMysqlHost, rootCmd.PersistentFlags().Lookup(FlagMysqlHost))
	_ = viper.BindPFlag(KeyMysqlUser, rootCmd.PersistentFlags().Lookup(FlagMysqlUser))
	_ = viper.BindPFlag(KeyMysqlPassword, rootCmd.PersistentFlags().Lookup(FlagMysqlPassword))
	_ = viper.BindPFlag(KeyMysqlDatabase, rootCmd.PersistentFlags().Lookup(FlagMysqlDatabase))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".flightprep" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".flightprep")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Println("使用配置文件", viper.ConfigFileUsed())
	}
}
