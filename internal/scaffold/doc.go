// Package scaffold generates a contest workspace from template sets.
//
// For every selected language the generator renders the set's shared files
// once and its problem files once per problem, adds the common README, and
// appends each set's ignore rules to .gitignore inside a marked block.
// Everything is rendered in memory first. Existing files are skipped
// unless the request forces them.
package scaffold
