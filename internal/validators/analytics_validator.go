package validators

// ParseHotspotQuery validates the lat/lng query parameters of the hotspot
// lookup and reports every failing field at once.
func ParseHotspotQuery(latRaw, lngRaw string) (float64, float64, error) {
	var errs ValidationErrors

	lat, latErr := ParseCoordinate("lat", latRaw, 90)
	if latErr != nil {
		errs = append(errs, *latErr)
	}
	lng, lngErr := ParseCoordinate("lng", lngRaw, 180)
	if lngErr != nil {
		errs = append(errs, *lngErr)
	}

	if err := errs.Err(); err != nil {
		return 0, 0, err
	}
	return lat, lng, nil
}
