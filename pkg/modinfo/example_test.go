package modinfo_test

import (
	"fmt"

	"github.com/matzehuels/modkit/pkg/modinfo"
)

func ExampleRegistry() {
	doc, err := modinfo.Decode([]byte(`[
  { "type": "MOD_INFO", "id": "dda", "name": "Dark Days Ahead", "core": true },
  { "type": "MOD_INFO", "id": "magiclysm", "category": "content", "dependencies": [ "dda" ] },
  { "type": "MOD_INFO", "id": "stale", "dependencies": [ "old_dda" ] }
]`), "data/mods/modinfo.json")
	if err != nil {
		fmt.Println(err)
		return
	}

	reg := modinfo.NewRegistry()
	reg.SetReplacements(map[string]string{"old_dda": "dda"})
	reg.Add(doc.Mods...)

	tree := reg.Tree()
	order, err := tree.Resolve([]string{"magiclysm", "stale"})
	fmt.Println(order, err)
	for _, m := range reg.Sorted() {
		fmt.Printf("%s: %s\n", modinfo.CategoryTitle(m.Category), m.DisplayName())
	}
	// Output:
	// [dda magiclysm stale] <nil>
	// CORE GAME DATA: Dark Days Ahead
	// CONTENT PACKS: No name (magiclysm)
	// NO CATEGORY: No name (stale)
}
