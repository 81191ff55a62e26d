package cmd

import (
	"fmt"

	cfgpkg "github.com/KaramelBytes/immo-eda/internal/config"
	"github.com/KaramelBytes/immo-eda/internal/pipeline"
)

// Input flags shared by every command that reads a table.
var (
	inDelimiter string
	inEncoding  string
	inDecimal   string
	inThousands string
	inNoIndex   bool
	inSheet     string
	inTarget    string
)

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&inDelimiter, "delimiter", "", "field delimiter: ','|';'|tab (overrides config)")
	f.StringVar(&inEncoding, "encoding", "", "input encoding: utf-8|latin1|windows-1252")
	f.StringVar(&inDecimal, "decimal", "", "decimal separator: '.'|comma")
	f.StringVar(&inThousands, "thousands", "", "thousands separator: ','|'.'|space")
	f.BoolVar(&inNoIndex, "no-index", false, "first column is data, not a row index")
	f.StringVar(&inSheet, "sheet", "", "worksheet name for .xlsx input (default first sheet)")
	f.StringVar(&inTarget, "target", "", "target column (default price)")
}

func applyInputFlags(opt *pipeline.Options) error {
	var err error
	if inDelimiter != "" {
		if opt.Load.Delimiter, err = cfgpkg.ParseSeparator(inDelimiter); err != nil {
			return fmt.Errorf("unsupported --delimiter: %s", inDelimiter)
		}
	}
	if inDecimal != "" {
		switch inDecimal {
		case ".", "dot", ",", "comma":
		default:
			return fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", inDecimal)
		}
		opt.Load.DecimalSeparator, _ = cfgpkg.ParseSeparator(inDecimal)
	}
	if inThousands != "" {
		if opt.Load.ThousandsSeparator, err = cfgpkg.ParseSeparator(inThousands); err != nil {
			return fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", inThousands)
		}
	}
	if inEncoding != "" {
		opt.Load.Encoding = inEncoding
	}
	if inNoIndex {
		opt.Load.IndexColumn = false
	}
	if inSheet != "" {
		opt.Load.Sheet = inSheet
	}
	if inTarget != "" {
		opt.Target = inTarget
	}
	return nil
}
