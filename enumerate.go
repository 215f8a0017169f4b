package vkrender

import vk "github.com/vulkan-go/vulkan"

// enumerate runs the two-call idiom: query the count with a nil slice, then
// fill a slice of that size. Incomplete on the second call is accepted, the
// result is trimmed to the count returned.
func enumerate[T any](query func(count *uint32, out []T) vk.Result) ([]T, error) {
	var count uint32
	if ret := query(&count, nil); isError(ret) {
		return nil, newError(ret)
	}
	if count == 0 {
		return nil, nil
	}
	list := make([]T, count)
	if ret := query(&count, list); isError(ret) && ret != vk.Incomplete {
		return nil, newError(ret)
	}
	if int(count) < len(list) {
		list = list[:count]
	}
	return list, nil
}

// checkExisting splits wanted into names present in actual and names that
// are missing. Order of wanted is kept.
func checkExisting(actual, wanted []string) (existing, missing []string) {
	have := make(map[string]struct{}, len(actual))
	for _, name := range actual {
		have[name] = struct{}{}
	}
	for _, name := range wanted {
		if _, ok := have[name]; ok {
			existing = append(existing, name)
		} else {
			missing = append(missing, name)
		}
	}
	return existing, missing
}

func safeString(s string) string {
	if len(s) > 0 && s[len(s)-1] == 0 {
		return s
	}
	return s + "\x00"
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = safeString(s)
	}
	return out
}
