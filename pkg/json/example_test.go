package json_test

import (
	"fmt"
	"os"

	"github.com/matzehuels/modkit/pkg/json"
)

func ExampleObject() {
	data := []byte(`{"weather_types":["clear","rain"],"base_temperature":10.5}`)

	obj, err := json.NewReader(data).GetObject()
	if err != nil {
		panic(err)
	}
	types, _ := obj.GetStringArray("weather_types")
	temp, _ := obj.GetFloat("base_temperature")
	humidity, _ := obj.GetFloatOr("base_humidity", 50.0)

	fmt.Println(types)
	fmt.Println(temp)
	fmt.Println(humidity)
	// Output:
	// [clear rain]
	// 10.5
	// 50
}

func ExampleError() {
	data := []byte("{\n  \"id\": \"core\"\n  \"name\": \"Core\"\n}")

	_, err := json.NewReader(data, json.WithPath("modinfo.json")).GetObject()
	fmt.Println(err)
	// Output:
	// Json error: modinfo.json:2:15: missing comma
	//
	// {
	//   "id": "core"
	//               ^
	//   "name": "Core"
	// }
}

func ExampleWriter() {
	w := json.NewWriter(os.Stdout, true)
	w.StartObject()
	w.MemberValue("id", "core")
	w.MemberValue("dependencies", []string{"base", "music"})
	w.EndObject()
	_ = w.Flush()
	// Output:
	// {
	//   "id": "core",
	//   "dependencies": [ "base", "music" ]
	// }
}
