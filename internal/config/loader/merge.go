package loader

import "maps"

// Merge combines layers into a new map; later layers win. Nested maps
// are merged key by key, any other value replaces the earlier one. The
// inputs are not modified.
func Merge(layers ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, layer := range layers {
		mergeInto(out, layer)
	}
	return out
}

func mergeInto(dst, src map[string]any) {
	for key, val := range src {
		srcMap, ok := val.(map[string]any)
		if !ok {
			dst[key] = val
			continue
		}
		dstMap, ok := dst[key].(map[string]any)
		if !ok {
			dstMap = make(map[string]any, len(srcMap))
		} else {
			dstMap = maps.Clone(dstMap)
		}
		mergeInto(dstMap, srcMap)
		dst[key] = dstMap
	}
}
