package deception

// TrackingPixel is a minimal valid 1x1 transparent PNG. Serving it has no
// user-visible effect; the response headers request extended client hints
// so automated clients reveal more of themselves.
var TrackingPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, // PNG signature
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52, // IHDR
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41, 0x54, // IDAT
	0x78, 0xda, 0x63, 0x64, 0x60, 0xf8, 0x5f, 0x0f,
	0x00, 0x02, 0x87, 0x01, 0x80, 0xeb, 0x47, 0xba, 0x92,
	0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, // IEND
	0xae, 0x42, 0x60, 0x82,
}

// ClientHintHeaders are set on the pixel response to ask the client for an
// extended fingerprint on its next request.
var ClientHintHeaders = map[string]string{
	"Accept-CH": "Sec-CH-UA, Sec-CH-UA-Platform, Sec-CH-UA-Platform-Version, " +
		"Sec-CH-UA-Arch, Sec-CH-UA-Model, Sec-CH-UA-Full-Version-List",
	"Critical-CH":   "Sec-CH-UA, Sec-CH-UA-Platform",
	"Cache-Control": "no-store, max-age=0",
}
