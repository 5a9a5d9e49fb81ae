package io

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/gonum/matrix/mat64"
)

// Mat64toCSV saves Mat64 as a csv file
func Mat64toCSV(path string, matrix *mat64.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[Mat64toCSV] failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	rows, _ := matrix.Dims()

	stride := runtime.NumCPU()
	parsed := make([]string, stride)

	for row := 0; row < rows; row += stride {
		var wg sync.WaitGroup
		jobMark := stride

		if row+stride >= rows {
			jobMark = rows - row
		}

		wg.Add(jobMark)
		for offset := 0; offset < jobMark; offset++ {
			go formatLine(matrix, parsed, offset, row, &wg)
		}
		wg.Wait()

		for i := 0; i < jobMark; i++ {
			if _, err := fmt.Fprintf(w, "%s\n", parsed[i]); err != nil {
				return fmt.Errorf("[Mat64toCSV] failed to write %s: %w", path, err)
			}
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("[Mat64toCSV] failed to write %s: %w", path, err)
	}
	return f.Close()
}

func formatLine(matrix *mat64.Dense, parsed []string, offset int, row int, wg *sync.WaitGroup) {
	defer wg.Done()

	vals := matrix.RawRowView(row + offset)
	fields := make([]string, len(vals))
	for i, v := range vals {
		fields[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	parsed[offset] = strings.Join(fields, ", ")
}

// CSVtoMat64 reads a headerless numeric csv file as a mat64 matrix.
func CSVtoMat64(path string) (*mat64.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("[CSVtoMat64] failed to open %s: %w", path, err)
	}
	defer f.Close()

	csvReader := csv.NewReader(f)
	csvReader.TrimLeadingSpace = true
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("[CSVtoMat64] failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("[CSVtoMat64] %s is empty", path)
	}

	rows, cols := len(records), len(records[0])
	matrix := mat64.NewDense(rows, cols, nil)
	errs := make([]error, rows)

	workers := runtime.NumCPU()
	order := make(chan int, workers)
	var wg sync.WaitGroup

	wg.Add(rows)

	for i := 0; i < workers; i++ {
		go parseLine(records, matrix, errs, order, &wg)
	}

	for i := 0; i < rows; i++ {
		order <- i
	}

	wg.Wait()
	close(order)

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("[CSVtoMat64] %s line %d: %w", path, i+1, err)
		}
	}

	return matrix, nil
}

func parseLine(records [][]string, matrix *mat64.Dense, errs []error, order <-chan int, wg *sync.WaitGroup) {
	_, cols := matrix.Dims()

	for {
		index, ok := <-order
		if ok {
			for i := 0; i < cols; i++ {
				value, err := strconv.ParseFloat(strings.TrimSpace(records[index][i]), 64)
				if err != nil {
					errs[index] = err
					break
				}

				matrix.Set(index, i, value)
			}

			wg.Done()
		} else {
			break
		}
	}
	return
}
