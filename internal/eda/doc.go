// Package eda computes the exploratory views of a cleaned table: the
// per-column descriptive statistics, the Pearson correlation matrix
// and the chart dashboard.
//
// Everything here is a pure function of the table it is given. The
// quantile statistics share their linear-interpolation helpers with
// the cleaning package so the summary always agrees with the fences
// the outlier stage used.
package eda
