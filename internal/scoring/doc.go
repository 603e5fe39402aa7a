// Package scoring computes exam scores, letter grades, attendance and grade
// statistics and composes Result and Report snapshots. Every function is pure:
// callers load records from the store and persist what comes back.
package scoring
