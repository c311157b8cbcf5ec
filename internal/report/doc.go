// Package report renders records for people and for round trips.
//
// Format is the plain sectioned report. Styled is the same report coloured
// for a terminal. FormatParameters writes the record back as flat parameter
// text that the flat parser reads again. Table summarises many images and
// Save persists a report next to the user's other outputs.
package report
