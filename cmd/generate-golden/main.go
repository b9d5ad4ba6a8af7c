// Command generate-golden writes the exact-half probability golden file used
// by the stats tests. The binomial coefficients come from Pascal's triangle
// so the file does not share code with the package under test.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"
	"strconv"
)

type entry struct {
	N           int    `json:"n"`
	Numerator   string `json:"numerator"`
	Denominator string `json:"denominator"`
	Probability string `json:"probability"`
}

type golden struct {
	Description string  `json:"description"`
	Entries     []entry `json:"entries"`
}

var lengths = []int{0, 1, 2, 3, 4, 6, 7, 10, 20, 50, 51, 100, 200, 500, 1000}

func main() {
	out := flag.String("o", "internal/stats/testdata/exact_half_golden.json", "output file")
	flag.Parse()

	if err := write(*out); err != nil {
		fmt.Fprintln(os.Stderr, "generate-golden:", err)
		os.Exit(1)
	}
}

func write(path string) error {
	doc := golden{
		Description: "Exact probability of exactly n/2 heads in n fair flips, C(n, n/2)/2^n. Generated by cmd/generate-golden.",
	}
	for _, n := range lengths {
		doc.Entries = append(doc.Entries, exactHalf(n))
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func exactHalf(n int) entry {
	r := new(big.Rat)
	if n > 0 && n%2 == 0 {
		row := pascalRow(n)
		r.SetFrac(row[n/2], new(big.Int).Exp(big.NewInt(2), big.NewInt(int64(n)), nil))
	}
	f, _ := r.Float64()
	return entry{
		N:           n,
		Numerator:   r.Num().String(),
		Denominator: r.Denom().String(),
		Probability: strconv.FormatFloat(f, 'g', -1, 64),
	}
}

// pascalRow returns row n of Pascal's triangle.
func pascalRow(n int) []*big.Int {
	row := []*big.Int{big.NewInt(1)}
	for i := 1; i <= n; i++ {
		next := make([]*big.Int, i+1)
		next[0], next[i] = big.NewInt(1), big.NewInt(1)
		for j := 1; j < i; j++ {
			next[j] = new(big.Int).Add(row[j-1], row[j])
		}
		row = next
	}
	return row
}
