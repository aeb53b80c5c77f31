// Package dataprocessing turns the four source tables into one flat table
// with a row per legislator.
//
// # Sources
//
// ReadTable loads a CSV file, or the first sheet of an .xlsx workbook, into a
// Table of string cells. An empty cell is a null.
//
//   - social progress: a single composite column, "California (SPI score: 85.50)"
//   - state metadata: name, code and any other columns
//   - House: district ("CA-12"), party, crucial_vote_score and others
//   - Senate: state, party, crucial_vote_score and others
//
// # Flow
//
//	composite column → ExtractStateScore → []StateScore
//	metadata         → NewStateMetas → ReconcileStates(Matcher) → JoinStates → States
//	House, Senate    → HouseRecords, SenateRecords → MergeChambers → Chamber
//	Chamber, States  → JoinCongress (left join on state code) → Flatten → Table
//
// Joiner.Build runs the whole flow.
//
// # Name reconciliation
//
// State names differ between the metadata and score sources. A Matcher maps
// each metadata name to a score name. RatioMatcher reproduces difflib's
// get_close_matches (cutoff 0.6, three candidates, best first). ExactMatcher
// and NormalizedMatcher are stricter or Unicode-aware alternatives.
//
// # Output layout
//
// Flatten orders columns as House columns without district, then state and
// senate, then Senate-only columns, then state metadata columns and
// social_progress_index. Names found on both the legislator and state sides
// get _x and _y suffixes. The chamber score column is renamed to
// congressperson_progressiveness_score and senate is written True or False.
//
// # Errors
//
// Errors are internal/errors AppErrors:
//
//   - PARSING: malformed composite field or non-numeric score
//   - NO_MATCH: a metadata name with no close score name
//   - VALIDATION: a required column is missing
//   - NOT_FOUND: an input file is absent
package dataprocessing
