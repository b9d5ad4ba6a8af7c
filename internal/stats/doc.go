// Package stats turns raw simulation observations into per-parameter summary
// tables and compares them with the closed-form baselines of fair coin
// flipping: 2^n waiting time for a streak of n heads, C(n, n/2)·0.5^n for an
// exact half split and 1/(2√n) for the spread of the head fraction.
package stats
