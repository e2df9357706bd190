package command

import (
	"strings"

	"github.com/spaghettifunk/forge/internal/assetkind"
	"github.com/spaghettifunk/forge/internal/corelog"
	"github.com/spaghettifunk/forge/internal/modelpipeline"
	"github.com/spaghettifunk/forge/internal/pathutil"
	"github.com/spaghettifunk/forge/internal/scenepipeline"
)

// RegisterBuiltins installs every built-in command (spec.md §4.8: "--help,
// --exit, --clear_output, --refresh_cache, per-kind --convert_*, the
// catch-all --convert, and output-directory setters") against d, bound to
// reg's pipelines. --exit is handled directly by Dispatcher.Dispatch and is
// not registered here.
func RegisterBuiltins(d *Dispatcher, reg *Registry) {
	d.Register(&helpCommand{d: d})
	d.Register(&clearOutputCommand{reg: reg})
	d.Register(&refreshCacheCommand{reg: reg})
	d.Register(&setOutputDirCommand{reg: reg})
	d.Register(&setPackageDirCommand{reg: reg})
	d.Register(&convertTexturesCommand{reg: reg})
	d.Register(&convertShadersCommand{reg: reg})
	d.Register(&convertAudioCommand{reg: reg})
	d.Register(&convertScriptsCommand{reg: reg})
	d.Register(&convertSkeletonsCommand{reg: reg})
	d.Register(&convertAnimationsCommand{reg: reg})
	d.Register(&convertModelsCommand{reg: reg})
	d.Register(&convertAllCommand{reg: reg})
	d.Register(&configCommand{reg: reg})
	d.Register(&watchCommand{reg: reg})
}

var dirFlag = Flag{Key: "-dir", HasArgument: true, AllowMultiple: true, Optional: false}
var fileFlag = Flag{Key: "-file", HasArgument: true, Optional: true}
var recurseFlag = Flag{Key: "-r", Optional: true}

type helpCommand struct{ d *Dispatcher }

func (helpCommand) Key() string  { return "--help" }
func (helpCommand) Flags() []Flag { return nil }
func (c *helpCommand) Run(ParsedFlags) error {
	keys := make([]string, 0, len(c.d.commands))
	for k := range c.d.commands {
		keys = append(keys, k)
	}
	corelog.LogInfo("available commands: %s", strings.Join(keys, ", "))
	return nil
}

type clearOutputCommand struct{ reg *Registry }

func (clearOutputCommand) Key() string   { return "--clear_output" }
func (clearOutputCommand) Flags() []Flag { return nil }
func (c *clearOutputCommand) Run(ParsedFlags) error { return c.reg.ClearOutput() }

type refreshCacheCommand struct{ reg *Registry }

func (refreshCacheCommand) Key() string   { return "--refresh_cache" }
func (refreshCacheCommand) Flags() []Flag { return nil }
func (c *refreshCacheCommand) Run(ParsedFlags) error { c.reg.RefreshCache(); return nil }

type setOutputDirCommand struct{ reg *Registry }

func (setOutputDirCommand) Key() string { return "--set_output_dir" }
func (setOutputDirCommand) Flags() []Flag {
	return []Flag{{Key: "-output", HasArgument: true, Optional: false}}
}
func (c *setOutputDirCommand) Run(flags ParsedFlags) error {
	c.reg.Ctx.OutputRoot = pathutil.Normalize(flags.First("-output"))
	return nil
}

type setPackageDirCommand struct{ reg *Registry }

func (setPackageDirCommand) Key() string { return "--set_package_dir" }
func (setPackageDirCommand) Flags() []Flag {
	return []Flag{{Key: "-output", HasArgument: true, Optional: false}}
}
func (c *setPackageDirCommand) Run(flags ParsedFlags) error {
	c.reg.Ctx.PackageSubdir = flags.First("-output")
	return nil
}

type convertTexturesCommand struct{ reg *Registry }

func (convertTexturesCommand) Key() string   { return "--convert_textures" }
func (convertTexturesCommand) Flags() []Flag { return []Flag{dirFlag, fileFlag, recurseFlag} }
func (c *convertTexturesCommand) Run(flags ParsedFlags) error {
	files, err := resolveFiles(flags, func(ext string) bool {
		return ext == ".dds" || ext == ".tga" || ext == ".png" || ext == ".jpg" || ext == ".jpeg"
	})
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := c.reg.Textures.PackageTexture(f.String(), assetName(f), f); err != nil {
			corelog.LogError("convert_textures: %q: %v", f, err)
		}
	}
	return nil
}

type convertShadersCommand struct{ reg *Registry }

func (convertShadersCommand) Key() string   { return "--convert_shaders" }
func (convertShadersCommand) Flags() []Flag { return []Flag{dirFlag, fileFlag, recurseFlag} }
func (c *convertShadersCommand) Run(flags ParsedFlags) error {
	files, err := resolveFiles(flags, func(ext string) bool {
		switch ext {
		case ".vert", ".doma", ".hull", ".geom", ".pixe", ".comp":
			return true
		default:
			return false
		}
	})
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := c.reg.Shaders.PackageShader(f.String(), assetName(f), f); err != nil {
			corelog.LogError("convert_shaders: %q: %v", f, err)
		}
	}
	return nil
}

type convertAudioCommand struct{ reg *Registry }

func (convertAudioCommand) Key() string   { return "--convert_audio" }
func (convertAudioCommand) Flags() []Flag { return []Flag{dirFlag, fileFlag, recurseFlag} }
func (c *convertAudioCommand) Run(flags ParsedFlags) error {
	files, err := resolveFiles(flags, func(ext string) bool { return ext == ".wav" || ext == ".ogg" })
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := c.reg.Audio.PackageAudio(f.String(), assetName(f), f); err != nil {
			corelog.LogError("convert_audio: %q: %v", f, err)
		}
	}
	return nil
}

type convertScriptsCommand struct{ reg *Registry }

func (convertScriptsCommand) Key() string   { return "--convert_scripts" }
func (convertScriptsCommand) Flags() []Flag { return []Flag{dirFlag, fileFlag, recurseFlag} }
func (c *convertScriptsCommand) Run(flags ParsedFlags) error {
	files, err := resolveFiles(flags, func(ext string) bool { return ext == ".lua" })
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := c.reg.Scripts.PackageScript(f.String(), assetName(f), f); err != nil {
			corelog.LogError("convert_scripts: %q: %v", f, err)
		}
	}
	return nil
}

// sceneFiles is the shared extension filter for the three pipelines reading
// through the Scene Loader (skeletons, animations, models).
func sceneFiles(flags ParsedFlags) ([]pathutil.Path, error) {
	return resolveFiles(flags, func(ext string) bool {
		return ext == ".obj" || ext == ".gltf" || ext == ".glb" || ext == ".fbx"
	})
}

type convertSkeletonsCommand struct{ reg *Registry }

func (convertSkeletonsCommand) Key() string   { return "--convert_skeletons" }
func (convertSkeletonsCommand) Flags() []Flag { return []Flag{dirFlag, fileFlag, recurseFlag} }
func (c *convertSkeletonsCommand) Run(flags ParsedFlags) error {
	files, err := sceneFiles(flags)
	if err != nil {
		return err
	}
	for _, f := range files {
		graph, _, err := c.reg.Scenes.Loader().Load(f)
		if err != nil {
			corelog.LogError("convert_skeletons: %q: %v", f, err)
			continue
		}
		groups := scenepipeline.CollectMeshGroups(graph, f.Stem(), false)
		for _, skel := range scenepipeline.BuildSkeletonsForGraph(graph, groups) {
			if skel == nil {
				continue
			}
			if _, err := c.reg.Scenes.PackageSkeleton(f.String(), skel); err != nil {
				corelog.LogError("convert_skeletons: %q: %v", f, err)
			}
		}
	}
	return nil
}

type convertAnimationsCommand struct{ reg *Registry }

func (convertAnimationsCommand) Key() string   { return "--convert_animations" }
func (convertAnimationsCommand) Flags() []Flag { return []Flag{dirFlag, fileFlag, recurseFlag} }
func (c *convertAnimationsCommand) Run(flags ParsedFlags) error {
	files, err := sceneFiles(flags)
	if err != nil {
		return err
	}
	for _, f := range files {
		graph, _, err := c.reg.Scenes.Loader().Load(f)
		if err != nil {
			corelog.LogError("convert_animations: %q: %v", f, err)
			continue
		}
		anims, err := scenepipeline.BuildAnimations(graph)
		if err != nil {
			corelog.LogError("convert_animations: %q: %v", f, err)
			continue
		}
		for _, anim := range anims {
			if _, err := c.reg.Scenes.PackageAnimation(f.String(), anim); err != nil {
				corelog.LogError("convert_animations: %q: %v", f, err)
			}
		}
	}
	return nil
}

type convertModelsCommand struct{ reg *Registry }

func (convertModelsCommand) Key() string { return "--convert_models" }
func (convertModelsCommand) Flags() []Flag {
	return []Flag{
		dirFlag, fileFlag, recurseFlag,
		{Key: "-single", Optional: true},
		{Key: "-vertex", HasArgument: true, Optional: false},
		{Key: "-pixel", HasArgument: true, Optional: false},
	}
}
func (c *convertModelsCommand) Run(flags ParsedFlags) error {
	files, err := sceneFiles(flags)
	if err != nil {
		return err
	}
	single := flags.Has("-single")
	vertex := assetkind.Name(flags.First("-vertex"))
	pixel := assetkind.Name(flags.First("-pixel"))

	for _, f := range files {
		if err := c.convertOne(f, single, vertex, pixel); err != nil {
			corelog.LogError("convert_models: %q: %v", f, err)
		}
	}
	return nil
}

func (c *convertModelsCommand) convertOne(f pathutil.Path, single bool, vertex, pixel assetkind.Name) error {
	info, err := modelpipeline.GetModelInfo(c.reg.Scenes.Loader(), f, single)
	if err != nil {
		return err
	}
	assets, texCache, err := modelpipeline.Create(info, f, c.reg.Scenes.Loader(), c.reg.Materials, vertex, pixel)
	if err != nil {
		return err
	}
	if err := modelpipeline.PackageTextureCache(f.String(), texCache, c.reg.Textures); err != nil {
		return err
	}
	for _, asset := range assets {
		if _, err := modelpipeline.PackageModel(f.String(), asset, c.reg.Scenes, c.reg.Materials, c.reg.Models); err != nil {
			return err
		}
	}
	return nil
}

// convertAllCommand is the catch-all `--convert`, dispatching each matched
// file to the pipeline its extension belongs to (spec.md §4.8).
type convertAllCommand struct{ reg *Registry }

func (convertAllCommand) Key() string   { return "--convert" }
func (convertAllCommand) Flags() []Flag { return []Flag{dirFlag, fileFlag, recurseFlag} }
func (c *convertAllCommand) Run(flags ParsedFlags) error {
	files, err := resolveFiles(flags, nil)
	if err != nil {
		return err
	}
	for _, f := range files {
		var convErr error
		switch strings.ToLower(f.Ext()) {
		case ".dds", ".tga", ".png", ".jpg", ".jpeg":
			_, convErr = c.reg.Textures.PackageTexture(f.String(), assetName(f), f)
		case ".vert", ".doma", ".hull", ".geom", ".pixe", ".comp":
			_, convErr = c.reg.Shaders.PackageShader(f.String(), assetName(f), f)
		case ".wav", ".ogg":
			_, convErr = c.reg.Audio.PackageAudio(f.String(), assetName(f), f)
		case ".lua":
			_, convErr = c.reg.Scripts.PackageScript(f.String(), assetName(f), f)
		case ".obj", ".gltf", ".glb", ".fbx":
			convErr = c.convertScene(f)
		default:
			continue
		}
		if convErr != nil {
			corelog.LogError("convert: %q: %v", f, convErr)
		}
	}
	return nil
}

func (c *convertAllCommand) convertScene(f pathutil.Path) error {
	info, err := modelpipeline.GetModelInfo(c.reg.Scenes.Loader(), f, false)
	if err != nil {
		return err
	}
	assets, texCache, err := modelpipeline.Create(info, f, c.reg.Scenes.Loader(), c.reg.Materials, assetkind.Name("ps_default_vertex_shader"), assetkind.Name("ps_default_pixel_shader"))
	if err != nil {
		return err
	}
	if err := modelpipeline.PackageTextureCache(f.String(), texCache, c.reg.Textures); err != nil {
		return err
	}
	for _, asset := range assets {
		if _, err := modelpipeline.PackageModel(f.String(), asset, c.reg.Scenes, c.reg.Materials, c.reg.Models); err != nil {
			return err
		}
	}
	return nil
}
