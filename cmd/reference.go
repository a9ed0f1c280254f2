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
	"github.com/packagewjx/flight-feature-prep/internal/reference"
	"github.com/spf13/cobra"
	"log"
)

// referenceCmd represents the reference command
var referenceCmd = &cobra.Command{
	Use:   "reference",
	Short: "管理机场平均延误参考表",
}

// referenceImportCmd represents the reference import command
var referenceImportCmd = &cobra.Command{
	Use:   "import referenceDir",
	Short: "将referenceDir下的origin_arr_delay.txt与dest_arr_delay.txt导入MySQL",
	Long:  "导入时替换数据库中同类参考表的全部记录。导入后prepare可通过--mysql-host读取参考表。",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("参数错误")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		files := reference.NewFileSource(args[0])
		db, err := reference.NewDBSource(dbConfig())
		if err != nil {
			return err
		}
		defer func() {
			_ = db.Close()
		}()

		for _, kind := range reference.Kinds {
			table, err := files.Load(kind)
			if err != nil {
				return err
			}
			if err = db.Import(kind, table); err != nil {
				return err
			}
			log.Printf("导入%s参考表，共%d条\n", kind, table.Len())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(referenceCmd)
	referenceCmd.AddCommand(referenceImportCmd)
}
