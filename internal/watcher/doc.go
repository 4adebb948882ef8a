// Package watcher triggers dictionary imports when dict.cc archives show
// up in the source directory. Bursts of create and write events, as a
// browser produces while downloading, are collapsed into one trigger.
package watcher
