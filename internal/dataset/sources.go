package dataset

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/ridestats-cli/internal/config"
	"github.com/KaramelBytes/ridestats-cli/internal/logging"
)

// Sources are the resolved input paths for one run.
type Sources struct {
	Trips    string
	Stations string
	Weather  string
	Regional string
	Cases    string
}

// Caps are the per-file row limits.
type Caps struct {
	Trips    int
	Regional int
}

// Resolve builds input paths from a configuration. The configuration is validated first so that
// region and month are known values before they become path fragments.
func Resolve(c *config.Global) (Sources, error) {
	if err := c.Validate(); err != nil {
		return Sources{}, err
	}
	regionDir := filepath.Join(c.DataDir, c.Region)
	return Sources{
		Trips:    filepath.Join(regionDir, "trips.csv"),
		Stations: filepath.Join(regionDir, "stations.csv"),
		Weather:  filepath.Join(regionDir, "weather.csv"),
		Regional: filepath.Join(c.DataDir, filepath.FromSlash(fmt.Sprintf(c.RegionalPattern, c.Year, c.Month))),
		Cases:    filepath.Join(c.DataDir, c.CasesFile),
	}, nil
}

// Bundle holds every raw input frame.
type Bundle struct {
	Trips    *Frame
	Stations *Frame
	Weather  *Frame
	Regional *Frame
	Cases    *Frame
}

// Load reads all five inputs. Any missing or unreadable file aborts the load.
func Load(ctx context.Context, src Sources, caps Caps) (*Bundle, error) {
	b := &Bundle{}
	steps := []struct {
		path string
		max  int
		dst  **Frame
	}{
		{src.Trips, caps.Trips, &b.Trips},
		{src.Stations, 0, &b.Stations},
		{src.Weather, 0, &b.Weather},
		{src.Regional, caps.Regional, &b.Regional},
		{src.Cases, 0, &b.Cases},
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fr, err := ReadCSV(s.path, Options{MaxRows: s.max})
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", s.path, err)
		}
		for _, w := range fr.Warnings {
			logging.Debugf("%s: %s", fr.Name, w)
		}
		logging.Debugf("loaded %s: %d rows (%d in file)", fr.Name, fr.Len(), fr.Total)
		*s.dst = fr
	}
	return b, nil
}
