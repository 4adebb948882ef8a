// Package parser reads dict.cc vocabulary dumps.
//
// A dump is UTF-8 text. The first line names the language pair and must
// mention dict.cc, the second carries the export time:
//
//	# EN-DE vocabulary database	compiled by dict.cc
//	# Date and time	2019-05-01 10:00
//	house {n} [housing]	Haus {n}	noun
//
// Every following line that does not start with "#" is an entry line with
// tab separated left word, right word and category.
//
// # Word forms
//
// ParseWordForm strips two optional annotations from a token: the gender
// span in curly braces (returned with parentheses) and the qualifier span
// in square brackets (returned verbatim). Spans are located with a
// balanced delimiter scan; an opening delimiter that never closes leaves
// the token unchanged.
package parser
