package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
	"yt-channel-report/infrastructure/logger"
)

// P#DT#H#M#S; every part optional. Days are folded into hours.
var durationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// FormatDuration turns an ISO-8601 video duration such as PT2H12M57S into
// "2 hours 12 minutes 57 seconds". Missing parts render as 0 and unparseable
// input renders as all zeros.
func FormatDuration(duration string) string {
	var hours, minutes, seconds int64
	if m := durationPattern.FindStringSubmatch(duration); m != nil {
		days := atoi(m[1])
		hours = days*24 + atoi(m[2])
		minutes = atoi(m[3])
		seconds = atoi(m[4])
	}
	return fmt.Sprintf("%d hours %d minutes %d seconds", hours, minutes, seconds)
}

func atoi(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ParseTime parses an RFC3339 API timestamp, returning the zero time on failure
func ParseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func GenerateToken(payload map[string]interface{}, secretKey string) (string, error) {
	var claims jwt.MapClaims = payload
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generate token")
		return "", err
	}
	return tokenString, nil
}
