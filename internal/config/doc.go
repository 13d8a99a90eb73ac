// Package config loads contestgen project configuration.
//
// Configuration lives in contestgen.json at the workspace root:
//
//	{
//	  "languages": ["java", "python"],
//	  "problems": ["A", "B", "C", "D", "E", "F"],
//	  "templatesDir": "templates",
//	  "cacheDir": "cache",
//	  "taskURL": "https://atcoder.jp/contests/{{contest.id}}/tasks/{{contest.id}}_{{problem.id | lower}}",
//	  "force": false,
//	  "metricsFile": ""
//	}
//
// A default_lang.txt next to it may list languages, one per line, and takes
// precedence over the languages field.
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Problems)
package config
