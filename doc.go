// Package devtrack provides the types and functions to track a portfolio of
// real-estate development projects. It is designed to be local-first and
// simple, keeping every project in a single human-readable JSON document.
//
// The core functionalities include:
//   - Project Records: a typed Record per development project, holding its
//     financial figures, its status-dependent progress and its sales progress.
//   - Record Store: loading, merging by project name and persisting the whole
//     collection of records to a storage backend (local file or S3 object).
//   - Portfolio Metrics: a stateless computation of totals, margins and the
//     status distribution across all the stored projects.
//
// This package serves as the foundational logic for the `dvt` command-line
// tool and its HTTP dashboard.
package devtrack
