package utils

import "strings"

// ShortName extracts the last segment after "/" from an ARN or path.
// Returns the input unchanged if no "/" is found.
func ShortName(arn string) string {
	if parts := strings.Split(arn, "/"); len(parts) > 1 {
		return parts[len(parts)-1]
	}
	return arn
}

// Partition extracts the partition segment from an ARN
// (arn:aws-us-gov:iam::... -> "aws-us-gov"). Returns "aws" when the input
// is not a parseable ARN, which is the right default for finding ARNs.
func Partition(arn string) string {
	parts := strings.SplitN(arn, ":", 3)
	if len(parts) < 3 || parts[0] != "arn" || parts[1] == "" {
		return "aws"
	}
	return parts[1]
}

// AccountFromARN extracts the account ID segment from an ARN.
// Returns "" if the input has fewer than 6 colon-separated segments.
func AccountFromARN(arn string) string {
	parts := strings.SplitN(arn, ":", 6)
	if len(parts) < 6 || parts[0] != "arn" {
		return ""
	}
	return parts[4]
}
