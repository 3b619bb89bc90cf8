// Package printer writes command results in the selected output format.
package printer

import (
	"errors"
	"fmt"
	"io"

	"github.com/segmentio/cli"
	cmdpkg "github.com/storeops/storectl/internal/cmd"
	cmdcommon "github.com/storeops/storectl/internal/cmd/common"
	jqoutput "github.com/storeops/storectl/internal/cmd/output/jq"
	"sigs.k8s.io/yaml"
)

// TextRenderer writes the human readable form of a result.
type TextRenderer func(out io.Writer) error

// Structured writes v as JSON or YAML. YAML goes through the JSON encoding so
// both formats share field names and value formatting.
func Structured(out io.Writer, outType cmdcommon.OutputFormat, v any) error {
	switch outType {
	case cmdcommon.JSON:
		p, err := cli.Format(outType.String(), out)
		if err != nil {
			return err
		}
		defer p.Flush()
		p.Print(v)
		return nil
	case cmdcommon.YAML:
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding yaml output: %w", err)
		}
		_, err = out.Write(b)
		return err
	default:
		return fmt.Errorf("unsupported structured output format %s", outType.String())
	}
}

// Render writes raw in the helper's output format. Text output is produced by
// text; JSON and YAML output encode raw after applying any --jq filter.
func Render(helper cmdpkg.Helper, raw any, text TextRenderer) error {
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	settings, err := jqoutput.ResolveSettings(helper.GetCmd(), cfg)
	if err != nil {
		return err
	}

	out := helper.GetStreams().Out
	filtered, handled, err := jqoutput.Apply(raw, outType, settings, out)
	if err != nil {
		var cfgErr *cmdpkg.ConfigurationError
		if errors.As(err, &cfgErr) {
			return err
		}
		return cmdpkg.PrepareExecutionErrorWithHelper(helper, "jq filter failed", err)
	}
	if handled {
		return nil
	}

	if outType == cmdcommon.TEXT {
		return text(out)
	}
	return Structured(out, outType, filtered)
}
