package dataset

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/KaramelBytes/ridestats-cli/internal/config"
)

// Prompt asks an operator for region and month, repeating each question until the answer is one
// of the allowed values. It returns io.ErrUnexpectedEOF if input ends before both are answered.
func Prompt(in io.Reader, out io.Writer, months []int) (region string, month int, err error) {
	sc := bufio.NewScanner(in)
	ask := func(q string) (string, error) {
		fmt.Fprint(out, q)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return strings.TrimSpace(sc.Text()), nil
	}

	for {
		ans, err := ask(fmt.Sprintf("Which area do you want to analyze? (%s): ", strings.Join(config.Regions, ", ")))
		if err != nil {
			return "", 0, err
		}
		if region, err = config.CanonicalRegion(ans); err == nil {
			break
		}
		fmt.Fprintf(out, "  %v\n", err)
	}

	opts := make([]string, len(months))
	for i, m := range months {
		opts[i] = strconv.Itoa(m)
	}
	for {
		ans, err := ask(fmt.Sprintf("Which month do you want to analyze for the regional trips? (%s): ", strings.Join(opts, ", ")))
		if err != nil {
			return "", 0, err
		}
		m, convErr := strconv.Atoi(ans)
		if convErr == nil && slices.Contains(months, m) {
			return region, m, nil
		}
		fmt.Fprintf(out, "  %v\n", fmt.Errorf("%w: %q", config.ErrMonthNotAllowed, ans))
	}
}
