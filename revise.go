// Package revise finds low-performing pages in a search-performance sheet,
// extracts their article text, rewrites it through a completion service,
// and appends each result to the page's history row.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, gemini/, sheets/).
package revise
