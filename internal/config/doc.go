// Package config loads the polyroute.json project configuration.
//
// The configuration is stored in polyroute.json at the project root:
//
//	{
//	  "applicationId": "shop",
//	  "locales": ["en-US", "fr-CA"],
//	  "pagesDirectories": ["pages", "src/pages"],
//	  "extensions": [".tsx", ".ts", ".jsx", ".js"],
//	  "cookie": {
//	    "name": "L",
//	    "lifetime": 315360000
//	  },
//	  "dev": {
//	    "host": "localhost",
//	    "port": 3100,
//	    "touchSources": true
//	  },
//	  "publish": {
//	    "bucket": "my-site-config",
//	    "key": "polyroute/manifest.json",
//	    "region": "us-east-1"
//	  }
//	}
//
// The first locale is the default locale. Only applicationId and locales are
// required.
//
// # Environment
//
// A .env file next to polyroute.json is loaded first; variables already set
// in the environment win. The following variables override the file:
//
//	POLYROUTE_LOCALE_COOKIE_NAME      cookie.name
//	POLYROUTE_LOCALE_COOKIE_LIFETIME  cookie.lifetime (seconds)
//	POLYROUTE_DEBUG                   debug
//	POLYROUTE_PUBLISH_BUCKET          publish.bucket
//	POLYROUTE_PUBLISH_REGION          publish.region
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
