package credentials

import "github.com/aws/aws-sdk-go-v2/aws/arn"

// DeriveRegion resolves the working region: explicit override first,
// then the region embedded in the trust-anchor ARN, then the fallback.
func DeriveRegion(override, trustAnchorARN, fallback string) string {
	if override != "" {
		return override
	}
	if parsed, err := arn.Parse(trustAnchorARN); err == nil && parsed.Region != "" {
		return parsed.Region
	}
	return fallback
}
