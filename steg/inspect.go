package steg

// LSBStats summarises the least-significant bits of the payload channels.
//
// It is a best-effort diagnostic only. Natural photographs routinely show a
// ratio near 0.5, so a balanced ratio says nothing about whether a message is
// present. Use Extract for an authoritative answer.
type LSBStats struct {
	Channels int     // Channels examined
	Ones     int     // Channels whose LSB is 1
	Ratio    float64 // Ones / Channels, 0 when nothing was examined
}

// InspectLSB counts set LSBs over the first n payload channels of img, in
// embed order. n <= 0 examines every R, G and B channel.
func InspectLSB(img *Raster, n int) (LSBStats, error) {
	if err := img.Validate(); err != nil {
		return LSBStats{}, err
	}

	limit := Capacity(img)
	if n > 0 && n < limit {
		limit = n
	}

	var stats LSBStats
	for bit := 0; bit < limit; bit++ {
		stats.Ones += int(img.Pix[channelOffset(bit)] & 1)
	}
	stats.Channels = limit
	if limit > 0 {
		stats.Ratio = float64(stats.Ones) / float64(limit)
	}
	return stats, nil
}
