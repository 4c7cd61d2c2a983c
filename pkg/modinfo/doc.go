// Package modinfo loads mod manifests and assembles them into a registry
// that feeds the dependency tree.
//
// # Manifests
//
// A manifest file (usually modinfo.json) holds one object or an array of
// objects. Objects with "type": "MOD_INFO" define a mod:
//
//	{
//	  "type": "MOD_INFO",
//	  "id": "magiclysm",
//	  "name": "Magiclysm",
//	  "category": "content",
//	  "dependencies": [ "dda" ]
//	}
//
// Objects with "type": "MOD_PATCH" adjust a mod defined elsewhere, using
// the extend and delete directives of package typed:
//
//	{ "type": "MOD_PATCH", "id": "magiclysm", "extend": { "authors": [ "me" ] } }
//
// Every other object is ignored.
//
// # Registry
//
// [Registry] collects mods from several directories. A later definition of
// the same id replaces the earlier one and is recorded as an [Override].
// [Registry.Tree] builds a [deptree.Tree] from the dependency and conflict
// lists, after rewriting obsolete ids through the replacement list.
//
// # Scanning
//
// [Scanner] walks directories for manifests and caches their decoded form
// keyed by content hash, so unchanged mods are not re-parsed.
package modinfo
