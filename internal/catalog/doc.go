// Package catalog updates the relational video catalog shared with the
// marketplace application. The worker owns exactly two columns of the
// videos table: thumbnail_key and m3u8_key.
package catalog
