package binary

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteTable writes one "age k2" row per age in the historical
// binary_star_track.out layout.
func WriteTable(w io.Writer, ages, k2 []float64) error {
	if len(ages) != len(k2) {
		return &MismatchedTrackLengthError{What: "ages and track", Left: len(ages), Right: len(k2)}
	}
	bw := bufio.NewWriter(w)
	for i := range ages {
		if _, err := fmt.Fprintf(bw, "%4.2f \t %10.8f \n", ages[i], k2[i]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadTable reads a two-column table written by WriteTable. Lines starting
// with '#' are ignored.
func ReadTable(r io.Reader) (ages, k2 []float64, err error) {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, nil, fmt.Errorf("line %d: expected 2 columns, found %d", line, len(fields))
		}
		age, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: age: %w", line, err)
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: k2: %w", line, err)
		}
		ages = append(ages, age)
		k2 = append(k2, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return ages, k2, nil
}
