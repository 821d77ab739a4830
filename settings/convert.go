package settings

import "strconv"

// parseSnowflake parses a Discord snowflake string into the signed 64-bit
// integer the database stores it as (design §4.5: "Discord snowflakes are
// cast from unsigned").
func parseSnowflake(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

func formatSnowflake(id int64) string {
	return strconv.FormatInt(id, 10)
}

func stringSliceToSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func setToStringSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for item := range set {
		out = append(out, item)
	}
	return out
}

func snowflakeSliceToSet(ids []int64) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[formatSnowflake(id)] = struct{}{}
	}
	return set
}

func setToSnowflakeSlice(set map[string]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for item := range set {
		id, err := parseSnowflake(item)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

func int64PtrToSnowflake(p *int64) string {
	if p == nil {
		return ""
	}
	return formatSnowflake(*p)
}

func snowflakeToInt64Ptr(id string) *int64 {
	if id == "" {
		return nil
	}
	v, err := parseSnowflake(id)
	if err != nil {
		return nil
	}
	return &v
}

func stringPtrOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}

func stringOrNilPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
