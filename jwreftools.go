// Package jwreftools builds JWST NIRCam grism reference files.
//
// Usage:
//
//	import "github.com/hbushouse/jwreftools/nircam"
//
//	model, err := nircam.CreateGrismSpecWCS(ctx, "NIRCAM_F444W_modA_R.conf",
//	    nircam.WithAuthor("STScI"),
//	    nircam.WithOutName("nircam_wfss_specwcs.asdf"),
//	)
//
// An aXe conf file is read by package conf, split per beam by package beam,
// and turned into per-order linear dispersion models (package poly) that
// package reffile writes as an ASDF-flavoured YAML reference file. The
// wavelength-range files come from built-in tables or CSV overrides.
//
// Nothing here talks to the network; every run reads its inputs and writes
// one file per product.
package jwreftools
