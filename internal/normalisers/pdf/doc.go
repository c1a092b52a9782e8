// Package pdf loads the page text of PDF files.
//
// Pages are parsed natively with pdfcpu. When a file yields no text that
// way (scanned pages, CID fonts) and pdftotext from poppler is installed,
// the loader falls back to it.
package pdf
