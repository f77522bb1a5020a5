// Package kb implements the KB JPG-to-PDF pipeline: loading the bib-code
// lookup table, parsing source filenames, grouping pages into batches by
// date and publication, resolving output-file conflicts and assembling one
// multi-page PDF per batch.
package kb
