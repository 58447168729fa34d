// Copyright 2023-2024 GuinsooLab
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/GuinsooLab/witdb-sub009/pkg/block"
	"github.com/GuinsooLab/witdb-sub009/pkg/serde"
	"github.com/GuinsooLab/witdb-sub009/pkg/util"
)

func init() {
	cobra.OnInitialize(loadConfig)
	initRootCmd()
	initDumpCmd()
	initVerifyCmd()
	initGenCmd()
}

type config struct {
	Dump struct {
		MaxRows   int
		Structure bool
	}
	Verify struct {
		Concurrency int
	}
}

var cfg = &config{}

//root cmd

var info = "blockcat"
var RootCmd = &cobra.Command{
	Use:          "blockcat",
	Short:        info,
	Long:         info,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("use blockcat --help or -h")
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("debug") {
			util.SetLogLevel(zapcore.DebugLevel)
		}
	},
}

func initRootCmd() {
	RootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	viper.BindPFlag("debug", RootCmd.PersistentFlags().Lookup("debug"))
}

//dump cmd

func readPages(ps *serde.PagesSerde, fpath string) ([]*block.Page, error) {
	deserial, err := util.NewFileDeserialize(fpath)
	if err != nil {
		return nil, err
	}
	defer deserial.Close()
	var pages []*block.Page
	for {
		page, err := ps.ReadPage(deserial)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return pages, nil
			}
			return nil, err
		}
		pages = append(pages, page)
	}
}

func dumpPage(fpath string, idx int, page *block.Page) {
	fmt.Printf("%s page %d: %d columns, %d positions, %d bytes\n",
		fpath, idx, page.ColumnCount(), page.PositionCount(), page.SizeInBytes())
	if cfg.Dump.Structure {
		fmt.Print(block.DescribePage(page))
	}
	rows := page.PositionCount()
	if cfg.Dump.MaxRows > 0 && rows > cfg.Dump.MaxRows {
		rows = cfg.Dump.MaxRows
	}
	for pos := 0; pos < rows; pos++ {
		vals := make([]string, page.ColumnCount())
		for c := range vals {
			vals[c] = block.FormatValue(page.Column(c), pos)
		}
		fmt.Printf("%d\t%s\n", pos, strings.Join(vals, "\t"))
	}
	if rows < page.PositionCount() {
		fmt.Printf("... %d more positions\n", page.PositionCount()-rows)
	}
}

var dumpInfo = "print pages from serialized page files"
var dumpCmd = &cobra.Command{
	Use:   "dump file...",
	Short: dumpInfo,
	Long:  dumpInfo,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		initDumpCfg()
		ps := serde.NewPagesSerde(nil)
		for _, fpath := range args {
			pages, err := readPages(ps, fpath)
			if err != nil {
				return fmt.Errorf("%s: %w", fpath, err)
			}
			for i, page := range pages {
				dumpPage(fpath, i, page)
			}
		}
		return nil
	},
}

func initDumpCfg() {
	cfg.Dump.MaxRows = viper.GetInt("dump.maxRows")
	cfg.Dump.Structure = viper.GetBool("dump.structure")
}

func initDumpCmd() {
	RootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().IntVar(&cfg.Dump.MaxRows, "max_rows", 100, "max positions printed per page, 0 for all")
	dumpCmd.Flags().BoolVar(&cfg.Dump.Structure, "structure", false, "print nested encoding structure")

	viper.BindPFlag("dump.maxRows", dumpCmd.Flags().Lookup("max_rows"))
	viper.BindPFlag("dump.structure", dumpCmd.Flags().Lookup("structure"))
}

//verify cmd

var verifyInfo = "re-read page files and verify frame checksums"
var verifyCmd = &cobra.Command{
	Use:   "verify file...",
	Short: verifyInfo,
	Long:  verifyInfo,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		initVerifyCfg()
		ps := serde.NewPagesSerde(nil)
		var group errgroup.Group
		group.SetLimit(cfg.Verify.Concurrency)
		for _, fpath := range args {
			fpath := fpath
			group.Go(func() error {
				pages, err := readPages(ps, fpath)
				if err != nil {
					util.Error("verify failed",
						zap.String("file", fpath),
						zap.Error(err))
					return fmt.Errorf("%s: %w", fpath, err)
				}
				positions := 0
				for _, page := range pages {
					positions += page.PositionCount()
				}
				util.Info("verify ok",
					zap.String("file", fpath),
					zap.Int("pages", len(pages)),
					zap.Int("positions", positions))
				return nil
			})
		}
		return group.Wait()
	},
}

func initVerifyCfg() {
	cfg.Verify.Concurrency = viper.GetInt("verify.concurrency")
	if cfg.Verify.Concurrency <= 0 {
		cfg.Verify.Concurrency = 4
	}
}

func initVerifyCmd() {
	RootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().IntVar(&cfg.Verify.Concurrency, "concurrency", 4, "files verified in parallel")

	viper.BindPFlag("verify.concurrency", verifyCmd.Flags().Lookup("concurrency"))
}

//gen cmd

func samplePage() *block.Page {
	longs := block.NewLongBlockBuilder(nil, 8)
	names := block.NewVarWidthBlockBuilder(nil, 8)
	elems := block.NewLongBlockBuilder(nil, 16)
	arrays := block.NewArrayBlockBuilder(nil, elems, 8)
	fruits := []string{"apple", "banana", "cherry"}
	for i := 0; i < 8; i++ {
		if i%5 == 4 {
			longs.AppendNull()
			names.AppendNull()
			arrays.AppendNull()
			continue
		}
		longs.Append(int64(i * 10))
		names.AppendString(fruits[i%len(fruits)])
		eb := arrays.BeginEntry().(*block.LongBlockBuilder)
		for j := 0; j <= i%3; j++ {
			eb.Append(int64(i*100 + j))
		}
		arrays.CloseEntry()
	}
	ids := []int32{2, 2, 0, 1, 0, 2, 1, 0}
	dict := block.NewDictionaryBlock(len(ids), names.Build(), ids)
	rle := block.NewRunLengthBlock(block.NewLongBlock(1, []int64{7}, nil), 8)
	return block.NewPage(longs.Build(), dict, rle, arrays.Build())
}

var genInfo = "write a sample page file"
var genCmd = &cobra.Command{
	Use:   "gen file",
	Short: genInfo,
	Long:  genInfo,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		serial, err := util.NewFileSerialize(args[0])
		if err != nil {
			return err
		}
		defer serial.Close()
		ps := serde.NewPagesSerde(nil)
		return ps.WritePage(serial, samplePage())
	},
}

func initGenCmd() {
	RootCmd.AddCommand(genCmd)
}

var defCfgFilePaths = []string{".", "etc"}
var cfgFileName = "blockcat.toml"

func loadConfig() {
	for _, dirPath := range defCfgFilePaths {
		fpath := filepath.Join(dirPath, cfgFileName)
		if util.FileIsValid(fpath) {
			viper.SetConfigFile(fpath)
			err := viper.ReadInConfig()
			if err != nil {
				util.Error("viper load config file failed",
					zap.String("fpath", fpath),
					zap.Error(err))
				continue
			}
			break
		}
	}
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
