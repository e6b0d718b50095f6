// Package feedcsv reads collector batch files.
//
// The collector drops one CSV per (channel, query, window) named
// <channel>-<query>-<stamp>.csv, where stamp is the UTC window start in
// 20060102T1504 form. A batch file carries the posts collected for that
// window with header username,uploaded_time,collected_time,channel,query,text
// (the query column may be omitted; it then defaults to the feed's query).
//
// Fetchers resolve a BatchRef to a byte stream: DirFetcher for a local
// drop directory, HTTPFetcher for a collector HTTP base, and CachedFetcher
// to front HTTPFetcher with an on-disk cache. Reader streams Records and
// counts rows it had to skip, so callers can report them without failing
// the batch.
package feedcsv
