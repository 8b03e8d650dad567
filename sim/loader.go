package sim

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// csvTable is a header-indexed view over a CSV file.
type csvTable struct {
	path   string
	header map[string]int
	rows   [][]string
}

func readCSVTable(path string) (*csvTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close() //nolint:errcheck // read-only file; close error is not actionable

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header of %s: %w", path, err)
	}
	t := &csvTable{path: path, header: make(map[string]int, len(header))}
	for i, name := range header {
		t.header[strings.TrimSpace(name)] = i
	}

	for rowIdx := 1; ; rowIdx++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading %s at row %d: %w", path, rowIdx, err)
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// field returns the trimmed cell for a column, or "" when the column is
// absent or the row is short.
func (t *csvTable) field(row []string, col string) string {
	idx, ok := t.header[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (t *csvTable) stringField(row []string, rowIdx int, col string) (string, error) {
	val := t.field(row, col)
	if val == "" {
		return "", fmt.Errorf("%s row %d: missing required column %q", t.path, rowIdx+1, col)
	}
	return val, nil
}

func (t *csvTable) intField(row []string, rowIdx int, col string, def int) (int, error) {
	val := t.field(row, col)
	if val == "" {
		return def, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s row %d: invalid %s %q: %w", t.path, rowIdx+1, col, val, err)
	}
	return n, nil
}

func (t *csvTable) floatField(row []string, rowIdx int, col string, def float64) (float64, error) {
	val := t.field(row, col)
	if val == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("%s row %d: invalid %s %q: %w", t.path, rowIdx+1, col, val, err)
	}
	return f, nil
}

// boolField accepts true|1|yes case-insensitively; anything else is
// false.
func (t *csvTable) boolField(row []string, col string, def bool) bool {
	val := t.field(row, col)
	if val == "" {
		return def
	}
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// LoadStations reads stations.csv into a code-keyed map.
func LoadStations(path string) (map[string]*Station, error) {
	table, err := readCSVTable(path)
	if err != nil {
		return nil, err
	}

	stations := make(map[string]*Station, len(table.rows))
	for i, row := range table.rows {
		code, err := table.stringField(row, i, "code")
		if err != nil {
			return nil, err
		}
		numLoops, err := table.intField(row, i, "num_loops", 1)
		if err != nil {
			return nil, err
		}
		numPlatforms, err := table.intField(row, i, "num_platforms", 1)
		if err != nil {
			return nil, err
		}
		maxLen, err := table.intField(row, i, "max_train_len_m", 700)
		if err != nil {
			return nil, err
		}
		dwellMean, err := table.intField(row, i, "dwell_mean_s", 60)
		if err != nil {
			return nil, err
		}
		dwellStd, err := table.intField(row, i, "dwell_std_dev_s", 5)
		if err != nil {
			return nil, err
		}

		stations[code] = &Station{
			Code:         code,
			Name:         table.field(row, "name"),
			HasLoop:      table.boolField(row, "has_loop", false),
			NumLoops:     numLoops,
			NumPlatforms: numPlatforms,
			MaxTrainLenM: maxLen,
			IsJunction:   table.boolField(row, "is_junction", false),
			DwellMeanS:   dwellMean,
			DwellStdDevS: dwellStd,
		}
	}
	return stations, nil
}

// LoadSections reads sections.csv, materialising each undirected edge
// as two directed Section records. Blocks are generated separately by
// GenerateBlocks, so the reverse direction gets its own ids increasing
// in its direction of travel.
func LoadSections(path string) (map[SectionKey]*Section, error) {
	table, err := readCSVTable(path)
	if err != nil {
		return nil, err
	}

	sections := make(map[SectionKey]*Section, 2*len(table.rows))
	for i, row := range table.rows {
		u, err := table.stringField(row, i, "u")
		if err != nil {
			return nil, err
		}
		v, err := table.stringField(row, i, "v")
		if err != nil {
			return nil, err
		}
		lineType, err := table.stringField(row, i, "line_type")
		if err != nil {
			return nil, err
		}
		if lineType != string(LineSingle) && lineType != string(LineDouble) {
			return nil, fmt.Errorf("%s row %d: invalid line_type %q", path, i+1, lineType)
		}
		lengthKm, err := table.floatField(row, i, "length_km", 0)
		if err != nil {
			return nil, err
		}
		vmax, err := table.floatField(row, i, "vmax_kmph", 0)
		if err != nil {
			return nil, err
		}
		signalling := table.field(row, "signalling")
		if signalling == "" {
			signalling = string(SignallingAbsolute)
		}
		gradient, err := table.floatField(row, i, "gradient", 0)
		if err != nil {
			return nil, err
		}

		forward := NewSection(u, v, LineType(lineType), lengthKm, vmax, SignallingType(signalling), gradient)
		reverse := NewSection(v, u, LineType(lineType), lengthKm, vmax, SignallingType(signalling), gradient)
		sections[forward.Key()] = forward
		sections[reverse.Key()] = reverse
	}
	return sections, nil
}

// LoadTrains reads trains.csv. Routes are pipe-separated station codes
// and must name at least two stations.
func LoadTrains(path string) ([]*Train, error) {
	table, err := readCSVTable(path)
	if err != nil {
		return nil, err
	}

	trains := make([]*Train, 0, len(table.rows))
	for i, row := range table.rows {
		id, err := table.stringField(row, i, "train_id")
		if err != nil {
			return nil, err
		}
		priority, err := table.intField(row, i, "priority", 0)
		if err != nil {
			return nil, err
		}
		vmax, err := table.floatField(row, i, "vmax_kmph", 0)
		if err != nil {
			return nil, err
		}
		accel, err := table.floatField(row, i, "acceleration_ms2", 0)
		if err != nil {
			return nil, err
		}
		decel, err := table.floatField(row, i, "base_deceleration_ms2", 0)
		if err != nil {
			return nil, err
		}
		lengthM, err := table.intField(row, i, "length_m", 0)
		if err != nil {
			return nil, err
		}
		routeRaw, err := table.stringField(row, i, "route")
		if err != nil {
			return nil, err
		}
		route := strings.Split(routeRaw, "|")
		if len(route) < 2 {
			return nil, fmt.Errorf("%s row %d: route %q needs at least two stations", path, i+1, routeRaw)
		}
		departTime, err := table.intField(row, i, "depart_time_s", 0)
		if err != nil {
			return nil, err
		}

		trains = append(trains, NewTrain(id, table.field(row, "category"), priority,
			vmax, accel, decel, lengthM, route, int64(departTime)))
	}
	return trains, nil
}

// LoadDisruptions reads disruptions.csv. A missing file is not an
// error: the simulation just runs without scheduled disruptions.
func LoadDisruptions(path string) ([]*Disruption, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logrus.Infof("Disruption file not found at %s. Running without scheduled disruptions.", path)
		return nil, nil
	}

	table, err := readCSVTable(path)
	if err != nil {
		return nil, err
	}

	disruptions := make([]*Disruption, 0, len(table.rows))
	for i, row := range table.rows {
		u, err := table.stringField(row, i, "section_u")
		if err != nil {
			return nil, err
		}
		v, err := table.stringField(row, i, "section_v")
		if err != nil {
			return nil, err
		}
		start, err := table.intField(row, i, "start_time_s", 0)
		if err != nil {
			return nil, err
		}
		end, err := table.intField(row, i, "end_time_s", 0)
		if err != nil {
			return nil, err
		}
		factor, err := table.floatField(row, i, "speed_factor", 1)
		if err != nil {
			return nil, err
		}

		disruptions = append(disruptions, &Disruption{
			SectionU:    u,
			SectionV:    v,
			StartTimeS:  int64(start),
			EndTimeS:    int64(end),
			SpeedFactor: factor,
		})
	}
	return disruptions, nil
}

// ValidateRoutes warns about route references the static model cannot
// satisfy: unknown stations, missing sections, and single-line
// stretches with no loop/junction boundary before the route end. All
// findings are non-fatal; the kernel degrades per its error model.
func ValidateRoutes(stations map[string]*Station, sections map[SectionKey]*Section, trains []*Train) {
	for _, t := range trains {
		for _, code := range t.Route {
			if _, ok := stations[code]; !ok {
				logrus.Warnf("train %s: route station %q not in stations file", t.ID, code)
			}
		}
		for i := 0; i < len(t.Route)-1; i++ {
			key := SectionKey{U: t.Route[i], V: t.Route[i+1]}
			section, ok := sections[key]
			if !ok {
				logrus.Warnf("train %s: no section for route hop %s", t.ID, key)
				continue
			}
			if section.LineType != LineSingle {
				continue
			}
			// Walk the single-line run; a run that only terminates
			// because the route ends has no crossing boundary.
			boundary := false
			j := i
			for ; j < len(t.Route)-1; j++ {
				k := SectionKey{U: t.Route[j], V: t.Route[j+1]}
				sec, ok := sections[k]
				if !ok || sec.LineType != LineSingle {
					boundary = true
					j-- // hop j is outside the run; the outer loop checks it
					break
				}
				if st, ok := stations[k.V]; ok && st.IsPathBoundary() {
					boundary = true
					break
				}
			}
			if !boundary {
				logrus.Warnf("train %s: single-line stretch from %s has no loop/junction boundary before route end", t.ID, t.Route[i])
			}
			i = j
		}
	}
}
